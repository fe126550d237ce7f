package matchstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Record is one accepted match as persisted. Person* fields name the person
// the match was accepted for; Result* and the parent fields carry the names
// as the source reported them.
type Record struct {
	ID              int64
	PersonID        string
	PersonGivenName string
	PersonSurname   string
	Source          string
	RecordType      string
	Year            *int
	Act             string
	ResultGivenName string
	ResultSurname   string
	FatherGivenName string
	MotherGivenName string
	MotherSurname   string
	Parish          string
	Locality        string
	Voivodeship     string
	ScanLink        string
	Raw             string
	Fingerprint     string
	FoundAt         time.Time
	UpdatedAt       time.Time
}

// UpsertMatch inserts the record or refreshes an existing one with the same
// identity. The identity is (person, source, record type, fingerprint);
// re-crawls therefore never duplicate a match. found_at is written once and
// preserved on refresh. Returns whether the record was newly created.
func (s *Store) UpsertMatch(ctx context.Context, rec Record) (bool, error) {
	ctx = ensureContext(ctx)
	if rec.PersonID == "" || rec.Source == "" || rec.RecordType == "" || rec.Fingerprint == "" {
		return false, fmt.Errorf("upsert match: incomplete record identity")
	}

	now := time.Now().UTC().Format(time.RFC3339)

	var created bool
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin upsert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var existingID int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM matched_records
			 WHERE person_id = ? AND source = ? AND record_type = ? AND fingerprint = ?`,
			rec.PersonID, rec.Source, rec.RecordType, rec.Fingerprint,
		).Scan(&existingID)

		switch {
		case err == sql.ErrNoRows:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO matched_records
				 (person_id, person_given_name, person_surname, source, record_type,
				  record_year, act_number, result_given_name, result_surname,
				  father_given_name, mother_given_name, mother_surname,
				  parish, locality, voivodeship, scan_link, raw_record, fingerprint,
				  found_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.PersonID, rec.PersonGivenName, rec.PersonSurname, rec.Source,
				rec.RecordType, nullableYear(rec.Year), rec.Act,
				rec.ResultGivenName, rec.ResultSurname,
				rec.FatherGivenName, rec.MotherGivenName, rec.MotherSurname,
				rec.Parish, rec.Locality, rec.Voivodeship, rec.ScanLink, rec.Raw,
				rec.Fingerprint, now, now)
			if err != nil {
				return fmt.Errorf("insert match: %w", err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("look up match: %w", err)
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE matched_records SET
				 person_given_name = ?, person_surname = ?, record_year = ?,
				 act_number = ?, result_given_name = ?, result_surname = ?,
				 father_given_name = ?, mother_given_name = ?, mother_surname = ?,
				 parish = ?, locality = ?, voivodeship = ?, scan_link = ?,
				 raw_record = ?, updated_at = ?
				 WHERE id = ?`,
				rec.PersonGivenName, rec.PersonSurname, nullableYear(rec.Year),
				rec.Act, rec.ResultGivenName, rec.ResultSurname,
				rec.FatherGivenName, rec.MotherGivenName, rec.MotherSurname,
				rec.Parish, rec.Locality, rec.Voivodeship, rec.ScanLink,
				rec.Raw, now, existingID)
			if err != nil {
				return fmt.Errorf("refresh match: %w", err)
			}
			created = false
		}
		return tx.Commit()
	})
	return created, err
}

// Filter narrows ListMatches. Zero values match everything.
type Filter struct {
	PersonID string
	Source   string
}

// ListMatches returns stored matches ordered by person, then source, then
// year.
func (s *Store) ListMatches(ctx context.Context, filter Filter) ([]Record, error) {
	ctx = ensureContext(ctx)

	query := `SELECT id, person_id, person_given_name, person_surname, source,
		record_type, record_year, act_number, result_given_name, result_surname,
		father_given_name, mother_given_name, mother_surname,
		parish, locality, voivodeship, scan_link, raw_record,
		fingerprint, found_at, updated_at FROM matched_records`
	var (
		conditions []string
		args       []any
	)
	if filter.PersonID != "" {
		conditions = append(conditions, "person_id = ?")
		args = append(args, filter.PersonID)
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY person_id, source, record_year"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return records, nil
}

// Stats summarizes the store contents.
type Stats struct {
	TotalMatches   int
	MatchedPersons int
	BySource       map[string]int
}

// MatchStats aggregates match counts overall and per source.
func (s *Store) MatchStats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{BySource: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COUNT(DISTINCT person_id) FROM matched_records",
	).Scan(&stats.TotalMatches, &stats.MatchedPersons)
	if err != nil {
		return Stats{}, fmt.Errorf("count matches: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT source, COUNT(1) FROM matched_records GROUP BY source")
	if err != nil {
		return Stats{}, fmt.Errorf("count matches by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			source string
			count  int
		)
		if err := rows.Scan(&source, &count); err != nil {
			return Stats{}, fmt.Errorf("scan source count: %w", err)
		}
		stats.BySource[source] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate source counts: %w", err)
	}
	return stats, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec      Record
		year     sql.NullInt64
		foundAt  string
		updateAt string
	)
	err := rows.Scan(&rec.ID, &rec.PersonID, &rec.PersonGivenName,
		&rec.PersonSurname, &rec.Source, &rec.RecordType, &year, &rec.Act,
		&rec.ResultGivenName, &rec.ResultSurname, &rec.FatherGivenName,
		&rec.MotherGivenName, &rec.MotherSurname, &rec.Parish, &rec.Locality,
		&rec.Voivodeship, &rec.ScanLink, &rec.Raw, &rec.Fingerprint,
		&foundAt, &updateAt)
	if err != nil {
		return Record{}, fmt.Errorf("scan match: %w", err)
	}
	if year.Valid {
		value := int(year.Int64)
		rec.Year = &value
	}
	rec.FoundAt = parseStoredTime(foundAt)
	rec.UpdatedAt = parseStoredTime(updateAt)
	return rec, nil
}

func parseStoredTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableYear(year *int) any {
	if year == nil {
		return nil
	}
	return *year
}
