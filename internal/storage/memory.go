package storage

import (
	"sync"
	"time"
)

type memoryStorage struct {
	mu      sync.RWMutex
	reports map[string][]Report
}

func NewMemoryStorage() Storage {
	return &memoryStorage{reports: make(map[string][]Report)}
}

func (s *memoryStorage) Save(report Report) error {
	if report.ProjectID == "" {
		report.ProjectID = DefaultProjectID
	}
	key := makeKey(report.ProjectID, report.Output)

	s.mu.Lock()
	s.reports[key] = append(s.reports[key], report)
	s.mu.Unlock()
	return nil
}

func (s *memoryStorage) Latest(projectID, output string, count int) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.reports[makeKey(projectID, output)]
	if count <= 0 || count > len(all) {
		count = len(all)
	}
	result := make([]Report, count)
	copy(result, all[len(all)-count:])
	return result, nil
}

func (s *memoryStorage) Cleanup(olderThan time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, reports := range s.reports {
		kept := reports[:0]
		for _, r := range reports {
			if !r.CreatedAt.Before(olderThan) {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(s.reports, key)
			continue
		}
		s.reports[key] = kept
	}
	return nil
}

func (s *memoryStorage) Close() error {
	return nil
}
