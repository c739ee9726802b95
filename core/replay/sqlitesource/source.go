// Package sqlitesource reads recorded episode motion data from a SQLite
// database. The schema is owned by whatever recorded the episode; this
// package only reads it.
package sqlitesource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/robosemantics/episode-segmenter/core/replay"
	"github.com/robosemantics/episode-segmenter/core/world"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	_ "modernc.org/sqlite"
)

const samplesQuery = `
SELECT entity, stamp, tx, ty, tz, qx, qy, qz, qw
FROM motion_samples
WHERE episode_id = ?
ORDER BY stamp`

// Source is a replay.SampleSource backed by a SQLite episode recording.
type Source struct {
	db *sql.DB
}

// Open opens the recording at path.
func Open(path string) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open episode database %q: %w", path, err)
	}
	return &Source{db: db}, nil
}

// New wraps an already-open database handle.
func New(db *sql.DB) *Source {
	return &Source{db: db}
}

func (s *Source) Close() error {
	return s.db.Close()
}

// Samples returns the episode's pose samples in stamp order.
func (s *Source) Samples(ctx context.Context, episodeID string) ([]replay.Sample, error) {
	rows, err := s.db.QueryContext(ctx, samplesQuery, episodeID)
	if err != nil {
		return nil, fmt.Errorf("query motion samples for episode %q: %w", episodeID, err)
	}
	defer rows.Close()

	var samples []replay.Sample
	for rows.Next() {
		var (
			entity         string
			stamp          float64
			tx, ty, tz     float64
			qx, qy, qz, qw float64
		)
		if err := rows.Scan(&entity, &stamp, &tx, &ty, &tz, &qx, &qy, &qz, &qw); err != nil {
			return nil, fmt.Errorf("scan motion sample: %w", err)
		}
		samples = append(samples, replay.Sample{
			Entity: entity,
			Stamp:  stamp,
			Pose: world.Pose{
				Position:    r3.Vec{X: tx, Y: ty, Z: tz},
				Orientation: quat.Number{Real: qw, Imag: qx, Jmag: qy, Kmag: qz},
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read motion samples for episode %q: %w", episodeID, err)
	}
	return samples, nil
}
