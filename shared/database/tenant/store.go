package tenant

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is a tenant-owned row. Implementing it is what lets a model pass
// through the guard at all; the guard stamps the organization on creation
// and refuses to trust any caller-supplied value.
type Record interface {
	OwnerOrg() uuid.UUID
	StampOrg(uuid.UUID)
}

// ErrNoOrganization is returned when a store is requested without an
// organization id. There is deliberately no way around it: every query
// built through this package carries the filter.
var ErrNoOrganization = errors.New("tenant: organization id is required")

// Store is a data-access handle pinned to a single organization. It is the
// only component allowed to turn (orgID, query) into an executable lookup;
// each request builds its own store from its own actor, so no organization
// state is ever shared between concurrent requests.
type Store struct {
	db    *gorm.DB
	orgID uuid.UUID
}

// ForOrg builds a store for one organization. A nil organization id is a
// caller bug and is rejected rather than silently widening the query.
func ForOrg(db *gorm.DB, orgID uuid.UUID) (*Store, error) {
	if orgID == uuid.Nil {
		return nil, ErrNoOrganization
	}
	return &Store{db: db, orgID: orgID}, nil
}

// OrgID returns the organization the store is pinned to.
func (s *Store) OrgID() uuid.UUID {
	return s.orgID
}

// Query returns a gorm query for the model with the organization filter
// already applied, for list endpoints that layer pagination and search on
// top.
func (s *Store) Query(model interface{}) *gorm.DB {
	return s.db.Model(model).Where("organization_id = ?", s.orgID)
}

// Find loads all rows of the organization matching the extra conditions.
func (s *Store) Find(dest interface{}, conds ...interface{}) error {
	return s.db.Where("organization_id = ?", s.orgID).Find(dest, conds...).Error
}

// First loads one row by extra conditions. A row existing in another
// organization is indistinguishable from a row that does not exist.
func (s *Store) First(dest interface{}, conds ...interface{}) error {
	return s.db.Where("organization_id = ?", s.orgID).First(dest, conds...).Error
}

// Count counts the organization's rows for the model.
func (s *Store) Count(model interface{}) (int64, error) {
	var total int64
	err := s.Query(model).Count(&total).Error
	return total, err
}

// Create inserts the record with the store's organization stamped over
// whatever the caller put in the struct. A request body can therefore never
// choose its own tenant.
func (s *Store) Create(rec Record) error {
	rec.StampOrg(s.orgID)
	return s.db.Create(rec).Error
}

// Updates applies the given column values to the record's row, but only if
// the stored row belongs to the store's organization. A cross-tenant target
// reports gorm.ErrRecordNotFound, never a forbidden error, so existence
// does not leak. The organization column itself is immutable.
func (s *Store) Updates(rec Record, id uuid.UUID, values map[string]interface{}) error {
	delete(values, "organization_id")
	result := s.db.Model(rec).
		Where("id = ? AND organization_id = ?", id, s.orgID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the record's row if it belongs to the store's
// organization; a cross-tenant target reports gorm.ErrRecordNotFound.
func (s *Store) Delete(rec Record, id uuid.UUID) error {
	result := s.db.Where("id = ? AND organization_id = ?", id, s.orgID).Delete(rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Transaction runs fn inside a database transaction with a store pinned to
// the same organization.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, orgID: s.orgID})
	})
}

// LockOrg takes the per-organization advisory transaction lock. Role and
// assignment mutations run under it so a concurrent reader never observes a
// half-applied grant or revoke. Must be called inside Transaction.
func (s *Store) LockOrg() error {
	key := int64(binary.BigEndian.Uint64(s.orgID[:8]))
	if err := s.db.Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
		return fmt.Errorf("failed to take organization lock: %w", err)
	}
	return nil
}
