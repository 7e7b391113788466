package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// EntityRow is the persisted motion state of one pre-generated entity.
type EntityRow struct {
	PregenID     uint32
	Tag          string
	Position     [3]float32
	Velocity     [3]float32
	Acceleration [3]float32
}

// SnapshotRow is one saved world state.
type SnapshotRow struct {
	ID       int64
	RunID    string
	Tick     uint64
	TakenAt  time.Time
	Entities []EntityRow
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

var entityColumns = []string{
	"snapshot_id", "pregen_id", "tag",
	"pos_x", "pos_y", "pos_z",
	"vel_x", "vel_y", "vel_z",
	"acc_x", "acc_y", "acc_z",
}

// Save writes a snapshot and its entities in one transaction and returns
// the snapshot id.
func (r *SnapshotRepo) Save(ctx context.Context, runID string, tick uint64, rows []EntityRow) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO world_snapshots (run_id, tick) VALUES ($1, $2) RETURNING id`,
		runID, int64(tick),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("snapshot insert: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"snapshot_entities"},
		entityColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			e := rows[i]
			return []any{
				id, int32(e.PregenID), e.Tag,
				e.Position[0], e.Position[1], e.Position[2],
				e.Velocity[0], e.Velocity[1], e.Velocity[2],
				e.Acceleration[0], e.Acceleration[1], e.Acceleration[2],
			}, nil
		}),
	); err != nil {
		return 0, fmt.Errorf("snapshot entities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("snapshot commit: %w", err)
	}
	return id, nil
}

// Latest returns the most recent snapshot, or nil when none was saved.
func (r *SnapshotRepo) Latest(ctx context.Context) (*SnapshotRow, error) {
	snap := &SnapshotRow{}
	var tick int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, run_id, tick, taken_at FROM world_snapshots
		 ORDER BY taken_at DESC, id DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.RunID, &tick, &snap.TakenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap.Tick = uint64(tick)

	rows, err := r.db.Pool.Query(ctx,
		`SELECT pregen_id, tag, pos_x, pos_y, pos_z, vel_x, vel_y, vel_z, acc_x, acc_y, acc_z
		 FROM snapshot_entities WHERE snapshot_id = $1 ORDER BY pregen_id`, snap.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e EntityRow
		var pregen int32
		if err := rows.Scan(&pregen, &e.Tag,
			&e.Position[0], &e.Position[1], &e.Position[2],
			&e.Velocity[0], &e.Velocity[1], &e.Velocity[2],
			&e.Acceleration[0], &e.Acceleration[1], &e.Acceleration[2],
		); err != nil {
			return nil, err
		}
		e.PregenID = uint32(pregen)
		snap.Entities = append(snap.Entities, e)
	}
	return snap, rows.Err()
}

// Prune keeps the newest keep snapshots and deletes the rest.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM world_snapshots WHERE id NOT IN (
		   SELECT id FROM world_snapshots ORDER BY taken_at DESC, id DESC LIMIT $1)`, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
