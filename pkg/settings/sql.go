package settings

import (
	"database/sql"
	"fmt"
)

// columns maps session types to their table column. Column names are never
// taken from user input.
var columns = map[string]string{
	Practice:   "practice",
	Qualifying: "qualifying",
	Sprint:     "sprint",
	Race:       "race",
}

const createNotificationsTable = `CREATE TABLE IF NOT EXISTS notifications (
		userid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		chatid TEXT NOT NULL,
		practice INTEGER NOT NULL DEFAULT 0,
		qualifying INTEGER NOT NULL DEFAULT 0,
		sprint INTEGER NOT NULL DEFAULT 0,
		race INTEGER NOT NULL DEFAULT 0);`

const selectUser = `SELECT practice, qualifying, sprint, race FROM notifications WHERE userid = ?`

const upsertUser = `INSERT OR REPLACE INTO notifications
		(userid, name, chatid, practice, qualifying, sprint, race)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

func upsertArgs(userID, name, chatID string, n Notifications) []any {
	if name == "" {
		name = userID
	}
	return []any{userID, name, chatID, toInt(n[Practice]), toInt(n[Qualifying]), toInt(n[Sprint]), toInt(n[Race])}
}

func selectSubscribers(sessionType string) (string, error) {
	column, ok := columns[sessionType]
	if !ok {
		return "", fmt.Errorf("unknown session type %q", sessionType)
	}
	return fmt.Sprintf(`SELECT userid, name, chatid FROM notifications WHERE %s = 1 ORDER BY userid`, column), nil
}

func toInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func readNotifications(rows *sql.Rows) (Notifications, error) {
	defer rows.Close()

	n := AllDisabled()
	// only can be one row
	if rows.Next() {
		var practice, qualifying, sprint, race int
		if err := rows.Scan(&practice, &qualifying, &sprint, &race); err != nil {
			return n, err
		}
		n[Practice] = practice == 1
		n[Qualifying] = qualifying == 1
		n[Sprint] = sprint == 1
		n[Race] = race == 1
	}
	return n, rows.Err()
}

func readUsers(rows *sql.Rows) ([]TelegramUser, error) {
	defer rows.Close()

	users := make([]TelegramUser, 0)
	for rows.Next() {
		var u TelegramUser
		if err := rows.Scan(&u.ID, &u.Name, &u.ChatID); err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
