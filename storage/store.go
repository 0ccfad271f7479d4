// Package storage persists scan sessions and their artifacts in bbolt,
// with an in-memory btree index over sessions for fast listing.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/finlens/finlens/diffengine"
	"github.com/finlens/finlens/types"
)

// Bucket names in bbolt
var (
	bucketSessions        = []byte("sessions")
	bucketResources       = []byte("resources")
	bucketViolations      = []byte("violations")
	bucketRecommendations = []byte("recommendations")
	bucketCosts           = []byte("costs")
	bucketCompliance      = []byte("compliance")
	bucketRisk            = []byte("risk")
)

// ErrNotFound is returned when a scan or artifact does not exist.
var ErrNotFound = errors.New("not found")

// sessionRef orders sessions newest-first in the index.
type sessionRef struct {
	StartedAtUnixNano int64
	ID                string
}

// Store is the persistence layer for scans and derived artifacts.
// Artifacts are stored as one JSON blob per scan: scans are written
// once at finalization and read whole, so per-item keys buy nothing.
type Store struct {
	mu    sync.RWMutex
	index *btree.BTreeG[sessionRef]
	db    *bbolt.DB
	dir   string
}

// Open creates or opens a store in the specified directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dbPath := filepath.Join(dir, "finlens.db")
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{
			bucketSessions, bucketResources, bucketViolations,
			bucketRecommendations, bucketCosts, bucketCompliance, bucketRisk,
		}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		index: btree.NewG[sessionRef](32, func(a, b sessionRef) bool {
			if a.StartedAtUnixNano != b.StartedAtUnixNano {
				return a.StartedAtUnixNano > b.StartedAtUnixNano
			}
			return a.ID < b.ID
		}),
		db:  db,
		dir: dir,
	}

	if err := s.rebuildIndex(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebuildIndex loads all session refs from disk into the btree.
func (s *Store) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var session types.ScanSession
			if err := json.Unmarshal(v, &session); err != nil {
				return fmt.Errorf("corrupt session %s: %w", k, err)
			}
			s.index.ReplaceOrInsert(sessionRef{
				StartedAtUnixNano: session.StartedAt.UnixNano(),
				ID:                session.ID,
			})
			return nil
		})
	})
}

// PutSession inserts or updates a scan session.
func (s *Store) PutSession(session *types.ScanSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(session.ID), value)
	})
	if err != nil {
		return err
	}

	s.index.ReplaceOrInsert(sessionRef{
		StartedAtUnixNano: session.StartedAt.UnixNano(),
		ID:                session.ID,
	})
	return nil
}

// GetSession loads one session by ID.
func (s *Store) GetSession(id string) (*types.ScanSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var session types.ScanSession
	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketSessions).Get([]byte(id))
		if value == nil {
			return ErrNotFound
		}
		return json.Unmarshal(value, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns sessions newest-first with offset/limit paging,
// plus the total count before paging.
func (s *Store) ListSessions(offset, limit int) ([]types.ScanSession, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.index.Len()
	if limit <= 0 {
		limit = 20
	}

	var ids []string
	pos := 0
	s.index.Ascend(func(ref sessionRef) bool {
		if pos >= offset {
			ids = append(ids, ref.ID)
		}
		pos++
		return len(ids) < limit
	})

	sessions := make([]types.ScanSession, 0, len(ids))
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		for _, id := range ids {
			value := bucket.Get([]byte(id))
			if value == nil {
				continue
			}
			var session types.ScanSession
			if err := json.Unmarshal(value, &session); err != nil {
				return err
			}
			sessions = append(sessions, session)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s *Store) putBlob(bucket []byte, scanID string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(scanID), value)
	})
}

func (s *Store) getBlob(bucket []byte, scanID string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucket).Get([]byte(scanID))
		if value == nil {
			return ErrNotFound
		}
		return json.Unmarshal(value, out)
	})
}

// SaveResources stores a scan's discovered resources.
func (s *Store) SaveResources(scanID string, resources []types.Resource) error {
	return s.putBlob(bucketResources, scanID, resources)
}

// GetResources loads a scan's resources.
func (s *Store) GetResources(scanID string) ([]types.Resource, error) {
	var resources []types.Resource
	if err := s.getBlob(bucketResources, scanID, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// SaveViolations stores a scan's violations.
func (s *Store) SaveViolations(scanID string, violations []types.Violation) error {
	return s.putBlob(bucketViolations, scanID, violations)
}

// GetViolations loads a scan's violations.
func (s *Store) GetViolations(scanID string) ([]types.Violation, error) {
	var violations []types.Violation
	if err := s.getBlob(bucketViolations, scanID, &violations); err != nil {
		return nil, err
	}
	return violations, nil
}

// SaveRecommendations stores a scan's recommendations.
func (s *Store) SaveRecommendations(scanID string, recs []types.Recommendation) error {
	return s.putBlob(bucketRecommendations, scanID, recs)
}

// GetRecommendations loads a scan's recommendations.
func (s *Store) GetRecommendations(scanID string) ([]types.Recommendation, error) {
	var recs []types.Recommendation
	if err := s.getBlob(bucketRecommendations, scanID, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// SaveCosts stores a scan's cost records.
func (s *Store) SaveCosts(scanID string, costs []types.CostRecord) error {
	return s.putBlob(bucketCosts, scanID, costs)
}

// GetCosts loads a scan's cost records.
func (s *Store) GetCosts(scanID string) ([]types.CostRecord, error) {
	var costs []types.CostRecord
	if err := s.getBlob(bucketCosts, scanID, &costs); err != nil {
		return nil, err
	}
	return costs, nil
}

// SaveCompliance stores a scan's compliance report.
func (s *Store) SaveCompliance(scanID string, report types.ComplianceReport) error {
	return s.putBlob(bucketCompliance, scanID, report)
}

// GetCompliance loads a scan's compliance report.
func (s *Store) GetCompliance(scanID string) (types.ComplianceReport, error) {
	var report types.ComplianceReport
	err := s.getBlob(bucketCompliance, scanID, &report)
	return report, err
}

// SaveRisk stores a scan's risk report.
func (s *Store) SaveRisk(scanID string, report types.RiskReport) error {
	return s.putBlob(bucketRisk, scanID, report)
}

// GetRisk loads a scan's risk report.
func (s *Store) GetRisk(scanID string) (types.RiskReport, error) {
	var report types.RiskReport
	err := s.getBlob(bucketRisk, scanID, &report)
	return report, err
}

// LoadDiffInput gathers everything the diff engine needs for one scan.
func (s *Store) LoadDiffInput(scanID string) (diffengine.Input, error) {
	session, err := s.GetSession(scanID)
	if err != nil {
		return diffengine.Input{}, err
	}

	in := diffengine.Input{Session: *session}
	if in.Resources, err = s.GetResources(scanID); err != nil && !errors.Is(err, ErrNotFound) {
		return diffengine.Input{}, err
	}
	if in.Violations, err = s.GetViolations(scanID); err != nil && !errors.Is(err, ErrNotFound) {
		return diffengine.Input{}, err
	}
	if in.Recommendations, err = s.GetRecommendations(scanID); err != nil && !errors.Is(err, ErrNotFound) {
		return diffengine.Input{}, err
	}
	return in, nil
}
