package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/types"
)

// PushProofRequest stores a new proof request in the pending queue.
func (s *Storage) PushProofRequest(req *types.ProofRequest) error {
	if req == nil || req.ID == "" {
		return fmt.Errorf("proof request without id")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	var existing types.ProofRequest
	err := s.getArtifact(requestPrefix, []byte(req.ID), &existing)
	if err == nil {
		return fmt.Errorf("proof request %s already exists", req.ID)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	stored := *req
	stored.Status = types.RequestPending
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	return s.setArtifact(requestPrefix, []byte(req.ID), &stored)
}

// ProofRequest returns the proof request with the given id.
func (s *Storage) ProofRequest(id string) (*types.ProofRequest, error) {
	req := &types.ProofRequest{}
	if err := s.getArtifact(requestPrefix, []byte(id), req); err != nil {
		return nil, err
	}
	return req, nil
}

// Fulfillment returns the fulfillment of the proof request with the given id.
func (s *Storage) Fulfillment(id string) (*types.Fulfillment, error) {
	f := &types.Fulfillment{}
	if err := s.getArtifact(fulfillmentPrefix, []byte(id), f); err != nil {
		return nil, err
	}
	return f, nil
}

// NextProofRequest returns the oldest pending, non reserved and non expired
// proof request, reserves it and marks it as locked. Expired requests found
// along the way are marked as expired. If no request is available it returns
// ErrNoMoreElements.
func (s *Storage) NextProofRequest() (*types.ProofRequest, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	now := time.Now()
	var chosen *types.ProofRequest
	var expired []*types.ProofRequest
	if err := s.iterateArtifacts(requestPrefix, nil, func(k, v []byte) bool {
		if s.isReserved(requestReservPrefix, k) {
			return true
		}
		req := &types.ProofRequest{}
		if err := decodeArtifact(v, req); err != nil {
			log.Warnw("failed to decode proof request", "key", string(k), "error", err.Error())
			return true
		}
		if req.Status != types.RequestPending {
			return true
		}
		if req.Expired(now) {
			expired = append(expired, req)
			return true
		}
		if chosen == nil || req.CreatedAt.Before(chosen.CreatedAt) {
			chosen = req
		}
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate proof requests: %w", err)
	}
	for _, req := range expired {
		if err := s.finishRequest(req, types.RequestExpired, "request expired"); err != nil {
			log.Warnw("failed to expire proof request", "id", req.ID, "error", err.Error())
		}
	}
	if chosen == nil {
		return nil, ErrNoMoreElements
	}
	if err := s.setReservation(requestReservPrefix, []byte(chosen.ID)); err != nil {
		return nil, ErrNoMoreElements
	}
	chosen.Status = types.RequestLocked
	if err := s.setArtifact(requestPrefix, []byte(chosen.ID), chosen); err != nil {
		return nil, fmt.Errorf("lock proof request: %w", err)
	}
	return chosen, nil
}

// MarkProofRequestDone stores the fulfillment of a locked request, marks the
// request as fulfilled and releases its reservation.
func (s *Storage) MarkProofRequestDone(id string, f *types.Fulfillment) error {
	if f == nil {
		return fmt.Errorf("nil fulfillment")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	req := &types.ProofRequest{}
	if err := s.getArtifact(requestPrefix, []byte(id), req); err != nil {
		return fmt.Errorf("get proof request %s: %w", id, err)
	}
	if req.Status.Final() {
		return fmt.Errorf("proof request %s is already %s", id, req.Status)
	}
	stored := *f
	stored.RequestID = id
	if err := s.setArtifact(fulfillmentPrefix, []byte(id), &stored); err != nil {
		return fmt.Errorf("store fulfillment: %w", err)
	}
	return s.finishRequest(req, types.RequestFulfilled, "")
}

// MarkProofRequestFailed marks a request as failed with the given reason and
// releases its reservation. Failed requests are never handed out again.
func (s *Storage) MarkProofRequestFailed(id, reason string) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	req := &types.ProofRequest{}
	if err := s.getArtifact(requestPrefix, []byte(id), req); err != nil {
		return fmt.Errorf("get proof request %s: %w", id, err)
	}
	if req.Status.Final() {
		return fmt.Errorf("proof request %s is already %s", id, req.Status)
	}
	return s.finishRequest(req, types.RequestFailed, reason)
}

// ExpireProofRequests marks every non final request whose expiry is before
// now as expired, including locked ones, and returns how many were expired.
func (s *Storage) ExpireProofRequests(now time.Time) (int, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	var expired []*types.ProofRequest
	if err := s.iterateArtifacts(requestPrefix, nil, func(_, v []byte) bool {
		req := &types.ProofRequest{}
		if err := decodeArtifact(v, req); err != nil {
			return true
		}
		if !req.Status.Final() && req.Expired(now) {
			expired = append(expired, req)
		}
		return true
	}); err != nil {
		return 0, fmt.Errorf("iterate proof requests: %w", err)
	}
	for _, req := range expired {
		if err := s.finishRequest(req, types.RequestExpired, "request expired"); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// finishRequest moves req to a final status and drops its reservation. The
// caller must hold globalLock.
func (s *Storage) finishRequest(req *types.ProofRequest, status types.RequestStatus, reason string) error {
	if err := s.deleteArtifact(requestReservPrefix, []byte(req.ID)); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation: %w", err)
	}
	req.Status = status
	req.Error = reason
	if err := s.setArtifact(requestPrefix, []byte(req.ID), req); err != nil {
		return fmt.Errorf("update proof request: %w", err)
	}
	return nil
}
