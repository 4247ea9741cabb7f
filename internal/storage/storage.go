package storage

import (
	"time"

	"github.com/pv/singlebundle/internal/combiner"
)

const DefaultProjectID = "default"

// Report запись об одном запуске склейки
type Report struct {
	ProjectID     string    `json:"projectId"`
	Output        string    `json:"output"`
	StyleNames    []string  `json:"styleNames"`
	ScriptNames   []string  `json:"scriptNames"`
	Bytes         int       `json:"bytes"`
	SvelteKitHash string    `json:"sveltekitHash,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewReport строит отчёт из результата комбайнера
func NewReport(projectID string, res combiner.Result, at time.Time) Report {
	return Report{
		ProjectID:     projectID,
		Output:        res.OutputName,
		StyleNames:    res.StyleNames,
		ScriptNames:   res.ScriptNames,
		Bytes:         len(res.Code),
		SvelteKitHash: res.SvelteKitHash,
		CreatedAt:     at,
	}
}

// Storage история сборок
type Storage interface {
	Save(report Report) error
	// Latest возвращает последние count отчётов в порядке от старых к новым
	Latest(projectID, output string, count int) ([]Report, error)
	Cleanup(olderThan time.Time) error
	Close() error
}

func makeKey(projectID, output string) string {
	if projectID == "" {
		projectID = DefaultProjectID
	}
	return projectID + ":" + output
}
