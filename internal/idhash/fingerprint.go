// Package idhash computes deterministic fingerprints for analysis inputs.
package idhash

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// Fingerprint kinds
const (
	KindRun  = "run"
	KindGrid = "grid"
)

// ComputeFingerprint hashes kind, seed and the JSON encoding of params.
// Formula: base58(SHA256(kind|seed|json(params)))
// Identical inputs always yield the same fingerprint, so reruns can be matched.
func ComputeFingerprint(kind string, seed uint64, params any) (string, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode %s parameters: %w", kind, err)
	}

	data := fmt.Sprintf("%s|%d|%s", kind, seed, payload)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:]), nil
}

// ComputeRunFingerprint fingerprints a single-portfolio analysis.
func ComputeRunFingerprint(params domain.PortfolioParameters, seed uint64) (string, error) {
	return ComputeFingerprint(KindRun, seed, params)
}

// ComputeGridFingerprint fingerprints a grid analysis.
func ComputeGridFingerprint(params domain.GridAnalysisParameters, seed uint64) (string, error) {
	return ComputeFingerprint(KindGrid, seed, params)
}

// Decode returns the raw SHA256 digest behind a fingerprint.
func Decode(fingerprint string) ([]byte, error) {
	raw, err := base58.Decode(fingerprint)
	if err != nil {
		return nil, fmt.Errorf("decode fingerprint: %w", err)
	}
	if len(raw) != sha256.Size {
		return nil, fmt.Errorf("decode fingerprint: expected %d bytes, got %d", sha256.Size, len(raw))
	}
	return raw, nil
}
