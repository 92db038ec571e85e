// Package workflow holds the in-memory review state of the curation
// dashboard and keeps it synchronized with the persistence layer.
//
// Mutations that operators expect to feel instant (status changes, deletes)
// apply locally first and report a degraded flag when the backing store
// could not be updated. Season assignment persists first: a failure there
// leaves local state untouched.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/metrics"
)

// Filter narrows record listings by review status.
type Filter string

// Supported listing filters.
const (
	FilterAll         Filter = "all"
	FilterPending     Filter = "pending"
	FilterApproved    Filter = "approved"
	FilterDisapproved Filter = "disapproved"
)

// Matches reports whether a record's status passes the filter. Pending also
// matches records whose status was never set; disapproved also matches the
// legacy rejected value still present in old rows.
func (f Filter) Matches(s curator.Status) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterPending:
		return s == curator.StatusPending || s == ""
	case FilterApproved:
		return s == curator.StatusApproved
	case FilterDisapproved:
		return s == curator.StatusDisapproved || s == curator.StatusRejected
	}
	return false
}

// Valid reports whether f is a recognized filter value.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterApproved, FilterDisapproved, "":
		return true
	}
	return false
}

// Workflow owns the live record list and season groupings.
type Workflow struct {
	mu          sync.RWMutex
	records     []curator.ProductRecord
	seasons     map[string][]curator.ProductRecord
	seasonOrder []string

	products curator.ProductStore
	seasonDB curator.SeasonStore
	logger   *zap.Logger
}

// New builds a Workflow over the given stores. Call Init before use.
func New(products curator.ProductStore, seasons curator.SeasonStore, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		products: products,
		seasonDB: seasons,
		seasons:  make(map[string][]curator.ProductRecord),
		logger:   logger,
	}
}

// Init loads records and seasons from the stores and rebuilds season
// membership from the persisted season field of each record.
func (w *Workflow) Init(ctx context.Context) error {
	records, err := w.products.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	names, err := w.seasonDB.ListSeasons(ctx)
	if err != nil {
		return fmt.Errorf("load seasons: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = records
	w.seasons = make(map[string][]curator.ProductRecord, len(names))
	w.seasonOrder = w.seasonOrder[:0]
	for _, name := range names {
		w.seasons[name] = nil
		w.seasonOrder = append(w.seasonOrder, name)
	}
	for _, r := range w.records {
		if r.Season == "" {
			continue
		}
		if _, ok := w.seasons[r.Season]; !ok {
			// record references a season the store no longer lists; keep it
			w.seasons[r.Season] = nil
			w.seasonOrder = append(w.seasonOrder, r.Season)
		}
		w.seasons[r.Season] = append(w.seasons[r.Season], r.Clone())
	}
	w.logger.Info("workflow initialized",
		zap.Int("records", len(w.records)),
		zap.Int("seasons", len(w.seasonOrder)))
	return nil
}

// Records returns copies of the records passing the filter, in insertion
// order.
func (w *Workflow) Records(f Filter) []curator.ProductRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]curator.ProductRecord, 0, len(w.records))
	for _, r := range w.records {
		if f.Matches(r.Status) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Record returns a copy of one record by ID.
func (w *Workflow) Record(id string) (curator.ProductRecord, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	i := w.index(id)
	if i < 0 {
		return curator.ProductRecord{}, curator.ErrNotFound
	}
	return w.records[i].Clone(), nil
}

// Add validates and persists a draft, then appends the stored record to the
// local list. New records always start pending.
func (w *Workflow) Add(ctx context.Context, draft curator.Draft) (curator.ProductRecord, error) {
	if err := validateDraft(draft); err != nil {
		return curator.ProductRecord{}, err
	}

	record, err := w.products.CreateProduct(ctx, draft)
	if err != nil {
		return curator.ProductRecord{}, fmt.Errorf("create product: %w", err)
	}
	if record.Status == "" {
		record.Status = curator.StatusPending
	}

	w.mu.Lock()
	w.records = append(w.records, record)
	w.mu.Unlock()

	w.logger.Info("record added",
		zap.String("id", record.ID), zap.String("name", record.Name))
	return record.Clone(), nil
}

// SetStatus moves a record between review states. The local list updates
// immediately; a persistence failure is reported as degraded=true, never as
// an error. Setting the current status is a no-op.
func (w *Workflow) SetStatus(ctx context.Context, id string, status curator.Status) (degraded bool, err error) {
	if !status.Valid() {
		return false, fmt.Errorf("invalid status %q", status)
	}

	w.mu.Lock()
	i := w.index(id)
	if i < 0 {
		w.mu.Unlock()
		return false, curator.ErrNotFound
	}
	if w.records[i].Status == status {
		w.mu.Unlock()
		return false, nil
	}
	w.records[i].Status = status
	w.mu.Unlock()

	patch := curator.ProductPatch{Status: &status}
	if perr := w.persistPatch(ctx, id, patch); perr != nil {
		metrics.IncPersistenceFailure("set_status")
		w.logger.Warn("status change not persisted",
			zap.String("id", id), zap.String("status", string(status)), zap.Error(perr))
		return true, nil
	}
	return false, nil
}

// AssignSeason moves a record into the named season, or clears its season
// when name is empty. An unknown season is created on the fly. Persistence
// happens first; local state is only touched after the store accepts the
// change.
func (w *Workflow) AssignSeason(ctx context.Context, id, season string) error {
	w.mu.RLock()
	i := w.index(id)
	var exists bool
	if season != "" {
		_, exists = w.seasons[season]
	}
	w.mu.RUnlock()
	if i < 0 {
		return curator.ErrNotFound
	}
	if season != "" && !exists {
		if err := w.seasonDB.CreateSeason(ctx, season); err != nil && !errors.Is(err, curator.ErrSeasonExists) {
			return fmt.Errorf("create season: %w", err)
		}
	}

	patch := curator.ProductPatch{Season: &season}
	if err := w.persistPatch(ctx, id, patch); err != nil {
		return fmt.Errorf("persist season assignment: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	i = w.index(id)
	if i < 0 {
		return curator.ErrNotFound
	}
	old := w.records[i].Season
	w.records[i].Season = season
	if old != "" {
		w.seasons[old] = removeMember(w.seasons[old], id)
	}
	if season != "" {
		if _, ok := w.seasons[season]; !ok {
			w.seasons[season] = nil
			w.seasonOrder = append(w.seasonOrder, season)
		}
		w.seasons[season] = append(w.seasons[season], w.records[i].Clone())
	}
	return nil
}

// Delete removes a record locally and from the store. A store failure is
// reported as degraded.
func (w *Workflow) Delete(ctx context.Context, id string) (degraded bool, err error) {
	w.mu.Lock()
	i := w.index(id)
	if i < 0 {
		w.mu.Unlock()
		return false, curator.ErrNotFound
	}
	season := w.records[i].Season
	w.records = append(w.records[:i], w.records[i+1:]...)
	if season != "" {
		w.seasons[season] = removeMember(w.seasons[season], id)
	}
	w.mu.Unlock()

	if perr := w.products.DeleteProduct(ctx, id); perr != nil && !errors.Is(perr, curator.ErrNotFound) {
		metrics.IncPersistenceFailure("delete")
		w.logger.Warn("delete not persisted", zap.String("id", id), zap.Error(perr))
		return true, nil
	}
	return false, nil
}

// DeleteAll clears every record. Local state empties unconditionally; season
// member lists empty too but season names survive.
func (w *Workflow) DeleteAll(ctx context.Context) (degraded bool) {
	w.mu.Lock()
	w.records = nil
	for name := range w.seasons {
		w.seasons[name] = nil
	}
	w.mu.Unlock()

	if err := w.products.DeleteAllProducts(ctx); err != nil {
		metrics.IncPersistenceFailure("delete_all")
		w.logger.Warn("delete-all not persisted", zap.Error(err))
		return true
	}
	return false
}

// Seasons returns the season list with snapshot members, in creation order.
func (w *Workflow) Seasons() []curator.Season {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]curator.Season, 0, len(w.seasonOrder))
	for _, name := range w.seasonOrder {
		members := make([]curator.ProductRecord, 0, len(w.seasons[name]))
		for _, m := range w.seasons[name] {
			members = append(members, m.Clone())
		}
		out = append(out, curator.Season{Name: name, Members: members})
	}
	return out
}

// CreateSeason registers a new empty season.
func (w *Workflow) CreateSeason(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("season name is required")
	}

	w.mu.RLock()
	_, exists := w.seasons[name]
	w.mu.RUnlock()
	if exists {
		return curator.ErrSeasonExists
	}

	if err := w.seasonDB.CreateSeason(ctx, name); err != nil {
		return fmt.Errorf("create season: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seasons[name]; !ok {
		w.seasons[name] = nil
		w.seasonOrder = append(w.seasonOrder, name)
	}
	return nil
}

// RenameSeason renames a season and cascades the new name to every record
// and snapshot that referenced the old one.
func (w *Workflow) RenameSeason(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.New("season name is required")
	}

	w.mu.RLock()
	_, oldExists := w.seasons[oldName]
	_, newExists := w.seasons[newName]
	w.mu.RUnlock()
	if !oldExists {
		return curator.ErrSeasonNotFound
	}
	if newExists {
		return curator.ErrSeasonExists
	}

	if err := w.seasonDB.RenameSeason(ctx, oldName, newName); err != nil {
		return fmt.Errorf("rename season: %w", err)
	}

	w.mu.Lock()
	members := w.seasons[oldName]
	delete(w.seasons, oldName)
	for i := range members {
		members[i].Season = newName
	}
	w.seasons[newName] = members
	for i, name := range w.seasonOrder {
		if name == oldName {
			w.seasonOrder[i] = newName
		}
	}
	var affected []string
	for i := range w.records {
		if w.records[i].Season == oldName {
			w.records[i].Season = newName
			affected = append(affected, w.records[i].ID)
		}
	}
	w.mu.Unlock()

	w.cascadeSeasonPatch(ctx, affected, newName, "rename_season")
	return nil
}

// DeleteSeason removes a season and clears the season field of every record
// that belonged to it.
func (w *Workflow) DeleteSeason(ctx context.Context, name string) error {
	w.mu.RLock()
	_, exists := w.seasons[name]
	w.mu.RUnlock()
	if !exists {
		return curator.ErrSeasonNotFound
	}

	if err := w.seasonDB.DeleteSeason(ctx, name); err != nil {
		return fmt.Errorf("delete season: %w", err)
	}

	w.mu.Lock()
	delete(w.seasons, name)
	for i, n := range w.seasonOrder {
		if n == name {
			w.seasonOrder = append(w.seasonOrder[:i], w.seasonOrder[i+1:]...)
			break
		}
	}
	var affected []string
	for i := range w.records {
		if w.records[i].Season == name {
			w.records[i].Season = ""
			affected = append(affected, w.records[i].ID)
		}
	}
	w.mu.Unlock()

	w.cascadeSeasonPatch(ctx, affected, "", "delete_season")
	return nil
}

// cascadeSeasonPatch persists a season change for every affected record.
// Failures degrade to local-only state, mirroring status changes.
func (w *Workflow) cascadeSeasonPatch(ctx context.Context, ids []string, season, operation string) {
	for _, id := range ids {
		value := season
		if err := w.persistPatch(ctx, id, curator.ProductPatch{Season: &value}); err != nil {
			metrics.IncPersistenceFailure(operation)
			w.logger.Warn("season cascade not persisted",
				zap.String("id", id), zap.String("operation", operation), zap.Error(err))
		}
	}
}

// persistPatch applies a patch, retrying once after a full reload when the
// store reports the record missing (another client may have recreated it).
func (w *Workflow) persistPatch(ctx context.Context, id string, patch curator.ProductPatch) error {
	err := w.products.UpdateProduct(ctx, id, patch)
	if !errors.Is(err, curator.ErrNotFound) {
		return err
	}
	if rerr := w.reload(ctx); rerr != nil {
		return err
	}
	return w.products.UpdateProduct(ctx, id, patch)
}

// reload refreshes the record list from the store without touching seasons.
func (w *Workflow) reload(ctx context.Context) error {
	records, err := w.products.ListProducts(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.records = records
	w.mu.Unlock()
	return nil
}

// index returns the position of id in the record list, or -1. Callers hold
// the lock.
func (w *Workflow) index(id string) int {
	for i := range w.records {
		if w.records[i].ID == id {
			return i
		}
	}
	return -1
}

func removeMember(members []curator.ProductRecord, id string) []curator.ProductRecord {
	for i := range members {
		if members[i].ID == id {
			return append(members[:i], members[i+1:]...)
		}
	}
	return members
}

func validateDraft(d curator.Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(d.URL) == "" {
		return errors.New("url is required")
	}
	return nil
}
