package streak

import (
	"testing"

	"github.com/julianstephens/flashdo/internal/certlog"
	"github.com/julianstephens/flashdo/internal/models"
)

func logOf(entries map[string][]string) *certlog.Log {
	var certs []models.Certification
	for id, dates := range entries {
		for _, d := range dates {
			certs = append(certs, models.Certification{RoutineID: id, Date: d})
		}
	}
	return certlog.New(certs)
}

func TestForRoutine(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		asOf  string
		want  int
	}{
		{
			name:  "three consecutive days then a gap",
			dates: []string{"2024-09-10", "2024-09-09", "2024-09-08", "2024-09-06"},
			asOf:  "2024-09-10",
			want:  3,
		},
		{
			name: "empty log",
			asOf: "2024-09-10",
			want: 0,
		},
		{
			name:  "yesterday only counts as zero",
			dates: []string{"2024-09-09", "2024-09-08"},
			asOf:  "2024-09-10",
			want:  0,
		},
		{
			name:  "today only",
			dates: []string{"2024-09-10"},
			asOf:  "2024-09-10",
			want:  1,
		},
		{
			name:  "future dates are ignored",
			dates: []string{"2024-09-12", "2024-09-10", "2024-09-09"},
			asOf:  "2024-09-10",
			want:  2,
		},
		{
			name:  "across a month boundary",
			dates: []string{"2024-10-01", "2024-09-30", "2024-09-29"},
			asOf:  "2024-10-01",
			want:  3,
		},
		{
			name:  "unsorted input",
			dates: []string{"2024-09-08", "2024-09-10", "2024-09-09"},
			asOf:  "2024-09-10",
			want:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logOf(map[string][]string{"r1": tt.dates})
			if got := ForRoutine(log, "r1", tt.asOf); got != tt.want {
				t.Errorf("ForRoutine() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestForGoal_TakesMax(t *testing.T) {
	log := logOf(map[string][]string{
		"r1": {"2024-09-10"},
		"r2": {"2024-09-10", "2024-09-09", "2024-09-08"},
		"r3": {},
	})
	if got := ForGoal(log, []string{"r1", "r2", "r3"}, "2024-09-10"); got != 3 {
		t.Errorf("ForGoal() = %d, want 3", got)
	}
	if got := ForGoal(log, nil, "2024-09-10"); got != 0 {
		t.Errorf("ForGoal(no routines) = %d, want 0", got)
	}
}

func TestLongest(t *testing.T) {
	log := logOf(map[string][]string{
		"r1": {"2024-09-01", "2024-09-02", "2024-09-04", "2024-09-05", "2024-09-06"},
	})
	if got := Longest(log, "r1"); got != 3 {
		t.Errorf("Longest() = %d, want 3", got)
	}
	if got := Longest(log, "missing"); got != 0 {
		t.Errorf("Longest(missing) = %d, want 0", got)
	}
}
