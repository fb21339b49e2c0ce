package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	"github.com/jwulff/commutes/internal/tables"
)

// DefaultDBPath is used when the config enables SQLite without a path.
const DefaultDBPath = "commutes.sqlite"

// Store provides access to the commutes SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database with WAL and foreign keys,
// and applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Name implements export.Sink.
func (s *Store) Name() string { return "sqlite" }

// Save inserts every record of a run in one transaction.
func (s *Store) Save(ctx context.Context, res tables.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	routeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routes (id, routeHash, summary, legsCount, departureAt, arrivalAt,
			arrivalTrafficAt, queriedAt, trafficModel, commute)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare routes: %w", err)
	}
	defer routeStmt.Close()

	for _, r := range res.Routes {
		if _, err := routeStmt.ExecContext(ctx, r.ID, r.Fingerprint, r.Summary, r.LegsCount,
			unixFromTime(r.Departure), unixFromTime(r.Arrival), unixFromTime(r.ArrivalTraffic),
			unixFromTime(r.QueriedAt), r.TrafficModel, r.Commute); err != nil {
			return fmt.Errorf("insert route %s: %w", r.ID, err)
		}
	}

	legStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO legs (id, routeId, startLat, startLng, endLat, endLng,
			distanceText, distanceMeters, durationText, durationSeconds,
			trafficText, trafficSeconds, startAddress, endAddress, stepsCount, crowFliesMeters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare legs: %w", err)
	}
	defer legStmt.Close()

	for _, l := range res.Legs {
		if _, err := legStmt.ExecContext(ctx, l.ID, l.RouteID,
			l.Start.Lat(), l.Start.Lon(), l.End.Lat(), l.End.Lon(),
			l.DistanceText, l.DistanceMeters, l.DurationText, l.DurationSeconds,
			l.TrafficText, l.TrafficSeconds, l.StartAddress, l.EndAddress,
			l.StepsCount, l.CrowFliesMeters); err != nil {
			return fmt.Errorf("insert leg %s: %w", l.ID, err)
		}
	}

	stepStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps (id, legId, stepNumber, htmlInstruction, plainInstruction, maneuver,
			distanceText, distanceMeters, durationText, durationSeconds,
			startLat, startLng, endLat, endLng, travelMode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare steps: %w", err)
	}
	defer stepStmt.Close()

	for _, st := range res.Steps {
		maneuver := sql.NullString{String: st.Maneuver, Valid: st.Maneuver != ""}
		if _, err := stepStmt.ExecContext(ctx, st.ID, st.LegID, st.Number,
			st.HTMLInstruction, st.PlainInstruction, maneuver,
			st.DistanceText, st.DistanceMeters, st.DurationText, st.DurationSeconds,
			st.Start.Lat(), st.Start.Lon(), st.End.Lat(), st.End.Lon(), st.TravelMode); err != nil {
			return fmt.Errorf("insert step %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RouteGroups returns routes grouped by fingerprint, most frequent first.
func (s *Store) RouteGroups() ([]RouteGroup, error) {
	rows, err := s.db.Query(`
		SELECT r.routeHash, MIN(r.summary), COUNT(*), MIN(t.total), MAX(t.total)
		FROM routes r
		JOIN (
			SELECT routeId, SUM(trafficSeconds) AS total
			FROM legs
			GROUP BY routeId
		) t ON t.routeId = r.id
		GROUP BY r.routeHash
		ORDER BY COUNT(*) DESC, r.routeHash ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query route groups: %w", err)
	}
	defer rows.Close()

	var groups []RouteGroup
	for rows.Next() {
		var g RouteGroup
		if err := rows.Scan(&g.Fingerprint, &g.Summary, &g.Routes,
			&g.MinTrafficSeconds, &g.MaxTrafficSeconds); err != nil {
			return nil, fmt.Errorf("scan route group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// RouteByID returns a stored route, or nil when there is none.
func (s *Store) RouteByID(id string) (*tables.Route, error) {
	row := s.db.QueryRow(`
		SELECT id, routeHash, summary, legsCount, departureAt, arrivalAt,
			arrivalTrafficAt, queriedAt, trafficModel, commute
		FROM routes
		WHERE id = ?
	`, id)

	var r tables.Route
	var dep, arr, arrTraffic, queried float64
	if err := row.Scan(&r.ID, &r.Fingerprint, &r.Summary, &r.LegsCount,
		&dep, &arr, &arrTraffic, &queried, &r.TrafficModel, &r.Commute); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan route: %w", err)
	}

	r.Departure = timeFromUnix(dep)
	r.Arrival = timeFromUnix(arr)
	r.ArrivalTraffic = timeFromUnix(arrTraffic)
	r.QueriedAt = timeFromUnix(queried)
	return &r, nil
}

// HasLeg reports whether a leg is stored.
func (s *Store) HasLeg(id string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM legs WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("query leg: %w", err)
	}
	return n > 0, nil
}

// LegsForRoute returns the legs of a route.
func (s *Store) LegsForRoute(routeID string) ([]tables.Leg, error) {
	rows, err := s.db.Query(`
		SELECT id, routeId, startLat, startLng, endLat, endLng,
			distanceText, distanceMeters, durationText, durationSeconds,
			trafficText, trafficSeconds, startAddress, endAddress, stepsCount, crowFliesMeters
		FROM legs
		WHERE routeId = ?
		ORDER BY rowid ASC
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("query legs: %w", err)
	}
	defer rows.Close()

	var legs []tables.Leg
	for rows.Next() {
		var l tables.Leg
		var sLat, sLng, eLat, eLng float64
		if err := rows.Scan(&l.ID, &l.RouteID, &sLat, &sLng, &eLat, &eLng,
			&l.DistanceText, &l.DistanceMeters, &l.DurationText, &l.DurationSeconds,
			&l.TrafficText, &l.TrafficSeconds, &l.StartAddress, &l.EndAddress,
			&l.StepsCount, &l.CrowFliesMeters); err != nil {
			return nil, fmt.Errorf("scan leg: %w", err)
		}
		l.Start = orb.Point{sLng, sLat}
		l.End = orb.Point{eLng, eLat}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

// StepsForLeg returns the steps of a leg, ordered by step number.
func (s *Store) StepsForLeg(legID string) ([]tables.Step, error) {
	rows, err := s.db.Query(`
		SELECT id, legId, stepNumber, htmlInstruction, plainInstruction, maneuver,
			distanceText, distanceMeters, durationText, durationSeconds,
			startLat, startLng, endLat, endLng, travelMode
		FROM steps
		WHERE legId = ?
		ORDER BY stepNumber ASC
	`, legID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []tables.Step
	for rows.Next() {
		var st tables.Step
		var maneuver sql.NullString
		var sLat, sLng, eLat, eLng float64
		if err := rows.Scan(&st.ID, &st.LegID, &st.Number, &st.HTMLInstruction,
			&st.PlainInstruction, &maneuver, &st.DistanceText, &st.DistanceMeters,
			&st.DurationText, &st.DurationSeconds, &sLat, &sLng, &eLat, &eLng,
			&st.TravelMode); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if maneuver.Valid {
			st.Maneuver = maneuver.String
		}
		st.Start = orb.Point{sLng, sLat}
		st.End = orb.Point{eLng, eLat}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// Counts returns the number of stored routes, legs and steps.
func (s *Store) Counts() (TableCounts, error) {
	var r TableCounts
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM routes), (SELECT COUNT(*) FROM legs), (SELECT COUNT(*) FROM steps)
	`).Scan(&r.Routes, &r.Legs, &r.Steps)
	if err != nil {
		return TableCounts{}, fmt.Errorf("count rows: %w", err)
	}
	return r, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
