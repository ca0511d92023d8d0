// Package store persists users and stage records through GORM.
//
// Lookups of a single record return (nil, nil) when nothing matches; only
// genuine database failures come back as errors.
package store

import (
	"context"
	"errors"
	"fmt"

	"herbtrace-backend/internal/models"

	"gorm.io/gorm"
)

type Gorm struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) q(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// first runs a First query and folds ErrRecordNotFound into found=false.
func first(tx *gorm.DB, dst any) (bool, error) {
	err := tx.First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Users

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.q(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Gorm) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	ok, err := first(s.q(ctx).Where("username = ?", username), &u)
	if err != nil || !ok {
		return nil, wrap("user by username", err)
	}
	return &u, nil
}

func (s *Gorm) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	ok, err := first(s.q(ctx).Where("id = ?", id), &u)
	if err != nil || !ok {
		return nil, wrap("user by id", err)
	}
	return &u, nil
}

// Usernames maps each known id to its username. Unknown ids are left out.
func (s *Gorm) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.q(ctx).Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("usernames: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out, nil
}

// Collectors

func (s *Gorm) CreateCollector(ctx context.Context, c *models.Collector) error {
	if err := s.q(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create collector: %w", err)
	}
	return nil
}

func (s *Gorm) Collector(ctx context.Context, id string) (*models.Collector, error) {
	var c models.Collector
	ok, err := first(s.q(ctx).Where("id = ?", id), &c)
	if err != nil || !ok {
		return nil, wrap("collector", err)
	}
	return &c, nil
}

func (s *Gorm) Collectors(ctx context.Context, ids []string) ([]models.Collector, error) {
	out := []models.Collector{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.q(ctx).Where("id IN ?", ids).Order("timestamp DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("collectors: %w", err)
	}
	return out, nil
}

// AllCollectors lists every collector record, newest first.
func (s *Gorm) AllCollectors(ctx context.Context) ([]models.Collector, error) {
	out := []models.Collector{}
	if err := s.q(ctx).Order("timestamp DESC").Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("all collectors: %w", err)
	}
	return out, nil
}

// Transports

func (s *Gorm) CreateTransport(ctx context.Context, t *models.Transport) error {
	if err := s.q(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create transport: %w", err)
	}
	return nil
}

// TransportsByCollector returns the legs of one chain in travel order.
func (s *Gorm) TransportsByCollector(ctx context.Context, collectorID string) ([]models.Transport, error) {
	return s.TransportsByCollectors(ctx, []string{collectorID})
}

func (s *Gorm) TransportsByCollectors(ctx context.Context, collectorIDs []string) ([]models.Transport, error) {
	out := []models.Transport{}
	if len(collectorIDs) == 0 {
		return out, nil
	}
	err := s.q(ctx).Where("collector_id IN ?", collectorIDs).
		Order("timestamp ASC").Order("id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("transports by collector: %w", err)
	}
	return out, nil
}

func (s *Gorm) AllTransports(ctx context.Context) ([]models.Transport, error) {
	out := []models.Transport{}
	if err := s.q(ctx).Order("timestamp ASC").Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("all transports: %w", err)
	}
	return out, nil
}

// Processing

func (s *Gorm) CreateProcessing(ctx context.Context, p *models.Processing) error {
	if err := s.q(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create processing: %w", err)
	}
	return nil
}

// LatestProcessing picks the most recent processing record of a collector.
func (s *Gorm) LatestProcessing(ctx context.Context, collectorID string) (*models.Processing, error) {
	var p models.Processing
	ok, err := first(s.q(ctx).Where("collector_id = ?", collectorID).
		Order("timestamp DESC").Order("id DESC"), &p)
	if err != nil || !ok {
		return nil, wrap("latest processing", err)
	}
	return &p, nil
}

func (s *Gorm) ProcessingsByCollectors(ctx context.Context, collectorIDs []string) ([]models.Processing, error) {
	out := []models.Processing{}
	if len(collectorIDs) == 0 {
		return out, nil
	}
	err := s.q(ctx).Where("collector_id IN ?", collectorIDs).
		Order("timestamp DESC").Order("id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("processings by collector: %w", err)
	}
	return out, nil
}

// AllProcessings is ordered newest first so the first match per collector is the latest.
func (s *Gorm) AllProcessings(ctx context.Context) ([]models.Processing, error) {
	out := []models.Processing{}
	if err := s.q(ctx).Order("timestamp DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("all processings: %w", err)
	}
	return out, nil
}

// Lab tests

func (s *Gorm) CreateLabTest(ctx context.Context, l *models.LabTest) error {
	if err := s.q(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create lab test: %w", err)
	}
	return nil
}

func (s *Gorm) LabTest(ctx context.Context, id string) (*models.LabTest, error) {
	var l models.LabTest
	ok, err := first(s.q(ctx).Where("id = ?", id), &l)
	if err != nil || !ok {
		return nil, wrap("lab test", err)
	}
	return &l, nil
}

func (s *Gorm) LatestLabTest(ctx context.Context, collectorID string) (*models.LabTest, error) {
	var l models.LabTest
	ok, err := first(s.q(ctx).Where("collector_id = ?", collectorID).
		Order("timestamp DESC").Order("id DESC"), &l)
	if err != nil || !ok {
		return nil, wrap("latest lab test", err)
	}
	return &l, nil
}

func (s *Gorm) LabTests(ctx context.Context, ids []string) ([]models.LabTest, error) {
	out := []models.LabTest{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.q(ctx).Where("id IN ?", ids).Order("timestamp DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("lab tests: %w", err)
	}
	return out, nil
}

// AllLabTests is newest first; it backs both the chain listing and the
// manufacturer's batch picker.
func (s *Gorm) AllLabTests(ctx context.Context) ([]models.LabTest, error) {
	out := []models.LabTest{}
	if err := s.q(ctx).Order("timestamp DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("all lab tests: %w", err)
	}
	return out, nil
}

// Product batches

// CreateProductBatch stores the batch and its join rows; the referenced lab
// tests themselves are left untouched.
func (s *Gorm) CreateProductBatch(ctx context.Context, b *models.ProductBatch) error {
	if err := s.q(ctx).Omit("LabTests.*").Create(b).Error; err != nil {
		return fmt.Errorf("create product batch: %w", err)
	}
	return nil
}

func (s *Gorm) ProductBatch(ctx context.Context, id string) (*models.ProductBatch, error) {
	var b models.ProductBatch
	ok, err := first(s.q(ctx).Preload("LabTests").Where("id = ?", id), &b)
	if err != nil || !ok {
		return nil, wrap("product batch", err)
	}
	return &b, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
