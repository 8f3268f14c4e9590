package school

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var (
	usersCSVHeader = []string{"ID", "Login", "Name", "Class", "Role", "Points", "Level", "Tasks Completed", "Created At", "Last Login"}
	logsCSVHeader  = []string{"ID", "Timestamp", "User", "Action", "Type", "Level"}
)

// ExportFilename returns the name offered for an export of kind ("users" or "logs") taken at t.
func ExportFilename(kind string, t time.Time) string {
	return kind + "-" + t.Format("2006-01-02") + ".csv"
}

// ExportUsersCSV writes every user (without password) as CSV to w.
func (s *Store) ExportUsersCSV(ctx context.Context, w io.Writer) error {
	users, err := s.ListUsers(ctx, UserFilter{})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users)+1)
	rows = append(rows, usersCSVHeader)
	for _, usr := range users {
		lastLogin := ""
		if usr.LastLogin != nil {
			lastLogin = usr.LastLogin.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatInt(usr.ID, 10),
			usr.Login,
			usr.Name,
			usr.Class,
			usr.Role,
			strconv.Itoa(usr.Points),
			strconv.Itoa(usr.Level),
			strconv.Itoa(len(usr.TasksCompleted)),
			usr.CreatedAt.Format(time.RFC3339),
			lastLogin,
		})
	}
	return writeCSV(w, rows)
}

// ExportLogsCSV writes every log entry, oldest first, as CSV to w.
func (s *Store) ExportLogsCSV(ctx context.Context, w io.Writer) error {
	var rows [][]string
	err := s.view(ctx, func(doc *Document) error {
		rows = make([][]string, 0, len(doc.Logs)+1)
		rows = append(rows, logsCSVHeader)
		for _, entry := range doc.Logs {
			rows = append(rows, []string{
				strconv.FormatInt(entry.ID, 10),
				entry.Timestamp.Format(time.RFC3339),
				entry.User,
				entry.Action,
				entry.Type,
				entry.Level,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return writeCSV(w, rows)
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return nil
}
