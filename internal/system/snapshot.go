package system

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/persist"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// SnapshotStore is the slice of persist.SnapshotRepo the snapshot systems use.
type SnapshotStore interface {
	Save(ctx context.Context, runID string, tick uint64, rows []persist.EntityRow) (int64, error)
	Latest(ctx context.Context) (*persist.SnapshotRow, error)
}

// SnapshotRestoreSystem copies the motion state of the newest saved snapshot
// onto the entities that exist now. Rows for missing entities are ignored.
type SnapshotRestoreSystem struct {
	store *world.Store
	repo  SnapshotStore
	log   *zap.Logger
}

func NewSnapshotRestoreSystem(repo SnapshotStore, log *zap.Logger) *SnapshotRestoreSystem {
	return &SnapshotRestoreSystem{repo: repo, log: log}
}

func (s *SnapshotRestoreSystem) Name() string         { return NameSnapshotRestore }
func (s *SnapshotRestoreSystem) Phase() coresys.Phase { return coresys.PhaseStart }
func (s *SnapshotRestoreSystem) Mode() coresys.Mode   { return coresys.Serial }

func (s *SnapshotRestoreSystem) Configure(store *world.Store, _ *scene.Bindings) error {
	s.store = store
	return nil
}

func (s *SnapshotRestoreSystem) Run(ctx context.Context) error {
	snap, err := s.repo.Latest(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		s.log.Info("no saved snapshot")
		return nil
	}
	applied := 0
	for _, row := range snap.Entities {
		id, ok := s.store.Lookup(row.PregenID)
		if !ok {
			continue
		}
		if t, ok := s.store.Transforms.Get(id); ok {
			t.Position = row.Position
		}
		if k, ok := s.store.Kinematics.Get(id); ok {
			k.Velocity = row.Velocity
			k.Acceleration = row.Acceleration
		}
		applied++
	}
	s.log.Info("snapshot restored",
		zap.Int64("snapshot_id", snap.ID),
		zap.String("from_run", snap.RunID),
		zap.Int("entities", applied))
	return nil
}

// SnapshotSaveSystem writes every Transform entity's motion state at shutdown.
type SnapshotSaveSystem struct {
	store *world.Store
	repo  SnapshotStore
	runID string
	ticks func() uint64
	log   *zap.Logger
}

// NewSnapshotSaveSystem tags saves with runID; ticks reports how many ticks ran.
func NewSnapshotSaveSystem(repo SnapshotStore, runID string, ticks func() uint64, log *zap.Logger) *SnapshotSaveSystem {
	return &SnapshotSaveSystem{repo: repo, runID: runID, ticks: ticks, log: log}
}

func (s *SnapshotSaveSystem) Name() string         { return NameSnapshotSave }
func (s *SnapshotSaveSystem) Phase() coresys.Phase { return coresys.PhaseStop }
func (s *SnapshotSaveSystem) Mode() coresys.Mode   { return coresys.Serial }

func (s *SnapshotSaveSystem) Configure(store *world.Store, _ *scene.Bindings) error {
	s.store = store
	return nil
}

func (s *SnapshotSaveSystem) Run(ctx context.Context) error {
	rows := CaptureRows(s.store)
	id, err := s.repo.Save(ctx, s.runID, s.ticks(), rows)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.log.Info("snapshot saved", zap.Int64("snapshot_id", id), zap.Int("entities", len(rows)))
	return nil
}

// CaptureRows converts every Transform entity to a persisted row, ordered by
// entity index.
func CaptureRows(store *world.Store) []persist.EntityRow {
	var rows []persist.EntityRow
	store.Transforms.Each(func(id ecs.EntityID, t *component.Transform) {
		row := persist.EntityRow{PregenID: id.Index(), Position: t.Position}
		if k, ok := store.Kinematics.Get(id); ok {
			row.Velocity, row.Acceleration = k.Velocity, k.Acceleration
		}
		if tag, ok := store.Tags.Get(id); ok {
			row.Tag = tag.Name
		}
		rows = append(rows, row)
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].PregenID < rows[j].PregenID })
	return rows
}
