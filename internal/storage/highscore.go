package storage

import (
	"strconv"
	"strings"
	"sync"
)

// HighScore stores the best score under a single key of a KV.
// It satisfies engine.ScoreStore.
type HighScore struct {
	kv  KV
	key string
	mu  sync.Mutex // Serializes read-modify-write for stores without update
}

// NewHighScore creates a best-score accessor for key in kv.
func NewHighScore(kv KV, key string) *HighScore {
	return &HighScore{kv: kv, key: key}
}

// LoadHighScore returns the stored best score. Missing, negative or
// malformed values read as 0.
func (h *HighScore) LoadHighScore() (int, error) {
	raw, ok, err := h.kv.Get(h.key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return parseScore(raw), nil
}

// SaveHighScore records score unless a higher value is already stored.
func (h *HighScore) SaveHighScore(score int) error {
	if score < 0 {
		score = 0
	}
	keepMax := func(old string, ok bool) string {
		if ok {
			if prev := parseScore(old); prev > score {
				return strconv.Itoa(prev)
			}
		}
		return strconv.Itoa(score)
	}

	if f, isFile := h.kv.(*FileKV); isFile {
		return f.update(h.key, keepMax)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	old, ok, err := h.kv.Get(h.key)
	if err != nil {
		return err
	}
	return h.kv.Set(h.key, keepMax(old, ok))
}

func parseScore(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
