// Package heredis reads person data out of a Heredis genealogy database.
// Heredis files are SQLite databases with French table names; the adapter
// only ever opens them read-only.
package heredis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"genecrawler/internal/location"
	"genecrawler/internal/logging"
	"genecrawler/internal/person"
	"genecrawler/internal/textnorm"
)

// Adapter loads persons from one Heredis database file.
type Adapter struct {
	db         *sql.DB
	path       string
	normalizer *location.Normalizer
	logger     *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithNormalizer attaches a location normalizer used when the database's own
// region field does not name a voivodeship.
func WithNormalizer(n *location.Normalizer) Option {
	return func(a *Adapter) {
		if n != nil {
			a.normalizer = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Open connects to a Heredis database file in read-only mode.
func Open(path string, opts ...Option) (*Adapter, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("heredis database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open heredis database: %w", err)
	}

	adapter := &Adapter{
		db:         db,
		path:       path,
		normalizer: location.NewNormalizer(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter, nil
}

// Close releases the database connection.
func (a *Adapter) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Path returns the database file path.
func (a *Adapter) Path() string {
	return a.path
}

// LoadStats reports what happened during a Load pass.
type LoadStats struct {
	Loaded           int
	SkippedNoName    int
	SkippedUncertain int
}

// Load reads every individual from the database. Rows without usable names
// are counted and skipped rather than failing the load.
func (a *Adapter) Load(ctx context.Context) ([]*person.Person, LoadStats, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT i.CodeID, i.Prenoms, n.Nom,
		       i.XrefMainEventNaissance, i.XrefMainEventDeces,
		       i.XrefPere, i.XrefMere
		FROM Individus i
		JOIN Noms n ON i.XrefNom = n.CodeID
		ORDER BY i.CodeID`)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("query individuals: %w", err)
	}
	defer rows.Close()

	type individual struct {
		code       int64
		givenName  sql.NullString
		surname    sql.NullString
		birthEvent sql.NullInt64
		deathEvent sql.NullInt64
		father     sql.NullInt64
		mother     sql.NullInt64
	}

	var individuals []individual
	for rows.Next() {
		var row individual
		if err := rows.Scan(&row.code, &row.givenName, &row.surname,
			&row.birthEvent, &row.deathEvent, &row.father, &row.mother); err != nil {
			return nil, LoadStats{}, fmt.Errorf("scan individual: %w", err)
		}
		individuals = append(individuals, row)
	}
	if err := rows.Err(); err != nil {
		return nil, LoadStats{}, fmt.Errorf("iterate individuals: %w", err)
	}

	var (
		persons []*person.Person
		stats   LoadStats
	)
	for _, row := range individuals {
		fields := person.Fields{
			ID:        fmt.Sprintf("@%d@", row.code),
			GivenName: row.givenName.String,
			Surname:   row.surname.String,
		}

		if row.birthEvent.Valid {
			event, err := a.eventDetails(ctx, row.birthEvent.Int64)
			if err != nil {
				return nil, stats, err
			}
			fields.BirthYear = event.year
			fields.BirthPlace = event.place
			fields.BirthRegion = event.region
		}
		if row.deathEvent.Valid {
			event, err := a.eventDetails(ctx, row.deathEvent.Int64)
			if err != nil {
				return nil, stats, err
			}
			fields.DeathYear = event.year
			fields.DeathPlace = event.place
			fields.DeathRegion = event.region
		}
		if row.father.Valid {
			fields.FatherName = a.personName(ctx, row.father.Int64)
		}
		if row.mother.Valid {
			fields.MotherName = a.personName(ctx, row.mother.Int64)
		}

		p, err := person.New(fields)
		switch {
		case errors.Is(err, person.ErrMissingName):
			stats.SkippedNoName++
			continue
		case errors.Is(err, person.ErrUncertainName):
			stats.SkippedUncertain++
			continue
		case err != nil:
			return nil, stats, fmt.Errorf("build person %s: %w", fields.ID, err)
		}
		persons = append(persons, p)
		stats.Loaded++
	}

	if stats.SkippedNoName > 0 || stats.SkippedUncertain > 0 {
		a.logger.Info("skipped unusable individuals",
			slog.Int("no_name", stats.SkippedNoName),
			slog.Int("uncertain", stats.SkippedUncertain))
	}
	return persons, stats, nil
}

type eventInfo struct {
	year   *int
	place  *string
	region *location.Region
}

// eventDetails resolves one Evenements row into a year, a display place
// string, and a voivodeship. The Lieux Region field is tried against the
// catalog first; the normalizer handles everything the catalog misses.
func (a *Adapter) eventDetails(ctx context.Context, eventID int64) (eventInfo, error) {
	var (
		dateGed     sql.NullString
		lieu        sql.NullInt64
		ville       sql.NullString
		departement sql.NullString
		regionField sql.NullString
		pays        sql.NullString
	)
	err := a.db.QueryRowContext(ctx, `
		SELECT e.DateGed, e.XrefLieu, l.Ville, l.Departement, l.Region, l.Pays
		FROM Evenements e
		LEFT JOIN Lieux l ON e.XrefLieu = l.CodeID
		WHERE e.CodeID = ?`, eventID,
	).Scan(&dateGed, &lieu, &ville, &departement, &regionField, &pays)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return eventInfo{}, nil
	case err != nil:
		return eventInfo{}, fmt.Errorf("query event %d: %w", eventID, err)
	}

	var info eventInfo
	if year, ok := textnorm.ExtractYear(dateGed.String); ok {
		info.year = &year
	}
	if !lieu.Valid {
		return info, nil
	}

	var parts []string
	for _, part := range []sql.NullString{ville, departement, regionField, pays} {
		if value := strings.TrimSpace(part.String); value != "" {
			parts = append(parts, value)
		}
	}
	if len(parts) > 0 {
		place := strings.Join(parts, ", ")
		info.place = &place
	}

	if regionField.Valid {
		if region, ok := location.Match(regionField.String); ok {
			info.region = &region
			return info, nil
		}
	}
	if info.place != nil {
		if region, ok := a.normalizer.Normalize(ctx, *info.place); ok {
			info.region = &region
		}
	}
	return info, nil
}

// personName returns "Given Surname" for a parent reference. Lookup failures
// degrade to an absent name; parents are advisory context only.
func (a *Adapter) personName(ctx context.Context, personID int64) *string {
	var (
		givenName sql.NullString
		surname   sql.NullString
	)
	err := a.db.QueryRowContext(ctx, `
		SELECT i.Prenoms, n.Nom
		FROM Individus i
		JOIN Noms n ON i.XrefNom = n.CodeID
		WHERE i.CodeID = ?`, personID,
	).Scan(&givenName, &surname)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			a.logger.Debug("parent lookup failed",
				slog.Int64("person", personID),
				slog.Any("error", err))
		}
		return nil
	}

	var parts []string
	if value := strings.TrimSpace(givenName.String); value != "" {
		parts = append(parts, value)
	}
	if value := strings.TrimSpace(surname.String); value != "" {
		parts = append(parts, value)
	}
	if len(parts) == 0 {
		return nil
	}
	name := strings.Join(parts, " ")
	return &name
}
