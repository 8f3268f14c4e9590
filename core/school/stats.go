package school

import (
	"context"
	"sort"
)

// LeaderboardSize is the number of students listed in Stats.TopStudents.
const LeaderboardSize = 5

type Stats struct {
	TotalUsers       int                `json:"total_users"`
	Students         int                `json:"students"`
	Admins           int                `json:"admins"`
	ActiveUsers      int                `json:"active_users"`
	Classes          int                `json:"classes"`
	Tasks            int                `json:"tasks"`
	ActiveTasks      int                `json:"active_tasks"`
	Completions      int                `json:"completions"`
	TotalPoints      int                `json:"total_points"`
	AveragePoints    float64            `json:"average_points"`
	TotalLogins      int                `json:"total_logins"`
	KnowledgeEntries int                `json:"knowledge_entries"`
	LogEntries       int                `json:"log_entries"`
	TopStudents      []LeaderboardEntry `json:"top_students"`
}

type LeaderboardEntry struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Class  string `json:"class"`
	Avatar string `json:"avatar"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
}

// Stats derives aggregate statistics from the document.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.view(ctx, func(doc *Document) error {
		st = computeStats(doc)
		return nil
	})
	return st, err
}

func computeStats(doc *Document) Stats {
	st := Stats{
		TotalUsers:       len(doc.Users),
		Classes:          len(doc.Classes),
		TotalLogins:      doc.System.TotalLogins,
		KnowledgeEntries: doc.AIKnowledge.Len(),
		LogEntries:       len(doc.Logs),
		TopStudents:      []LeaderboardEntry{},
	}

	students := make([]User, 0, len(doc.Users))
	for _, usr := range doc.Users {
		if usr.IsActive {
			st.ActiveUsers++
		}
		if usr.IsAdmin() {
			st.Admins++
			continue
		}
		st.Students++
		st.TotalPoints += usr.Points
		students = append(students, usr)
	}
	if st.Students > 0 {
		st.AveragePoints = float64(st.TotalPoints) / float64(st.Students)
	}

	for _, class := range doc.Classes {
		st.Tasks += len(class.Tasks)
		for _, task := range class.Tasks {
			if task.IsActive {
				st.ActiveTasks++
			}
			st.Completions += len(task.CompletedBy)
		}
	}

	// highest points first, earliest registration on ties
	sort.SliceStable(students, func(i, j int) bool { return students[i].Points > students[j].Points })
	for i, usr := range students {
		if i == LeaderboardSize {
			break
		}
		st.TopStudents = append(st.TopStudents, LeaderboardEntry{
			ID:     usr.ID,
			Name:   usr.Name,
			Class:  usr.Class,
			Avatar: usr.Avatar,
			Points: usr.Points,
			Level:  usr.Level,
		})
	}
	return st
}
