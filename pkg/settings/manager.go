package settings

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"f1dashboard/log"
)

const (
	DefaultDBFile = "./f1dash.db"

	Practice   = "Practice"
	Qualifying = "Qualifying"
	Sprint     = "Sprint"
	Race       = "Race"
)

// SessionTypes lists the notification categories in display order.
var SessionTypes = []string{Practice, Qualifying, Sprint, Race}

type TelegramUser struct {
	ID     string
	Name   string
	ChatID string
}

type Notifications map[string]bool

func AllDisabled() Notifications {
	n := Notifications{}
	for _, st := range SessionTypes {
		n[st] = false
	}
	return n
}

func (n Notifications) Symbol(sessionType string) string {
	return symbolStatus(n[sessionType])
}

func (n Notifications) String() string {
	status := make([]string, 0, len(SessionTypes))
	for _, st := range SessionTypes {
		status = append(status, fmt.Sprintf("%s Notify when %q starts", symbolStatus(n[st]), st))
	}
	return strings.Join(status, "\n")
}

func symbolStatus(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}

func IsSessionType(sessionType string) bool {
	_, ok := columns[sessionType]
	return ok
}

type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(dbFile string) (*Manager, error) {
	if dbFile == "" {
		dbFile = DefaultDBFile
	}
	db, err := sql.Open("sqlite3", dbFile)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", dbFile)
	}

	if _, err = db.Exec(createNotificationsTable); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating notifications table")
	}
	log.Debug("settings database ready", log.String("file", dbFile))

	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

// ToggleNotificationForSessionStarted flips the subscription of a user to one
// session type and returns the resulting settings.
func (m *Manager) ToggleNotificationForSessionStarted(userID, name, chatID, sessionType string) (Notifications, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !IsSessionType(sessionType) {
		return nil, fmt.Errorf("unknown session type %q", sessionType)
	}

	n, err := m.listNotifications(userID)
	if err != nil {
		return n, err
	}
	n[sessionType] = !n[sessionType]

	if _, err = m.db.Exec(upsertUser, upsertArgs(userID, name, chatID, n)...); err != nil {
		return n, errors.Wrapf(err, "storing settings of %s", userID)
	}
	return n, nil
}

func (m *Manager) ListNotifications(userID string) (Notifications, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listNotifications(userID)
}

func (m *Manager) ListUsersForSessionStarted(sessionType string) ([]TelegramUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	query, err := selectSubscribers(sessionType)
	if err != nil {
		return nil, err
	}
	rows, err := m.db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(err, "listing subscribers of %s", sessionType)
	}
	return readUsers(rows)
}

func (m *Manager) listNotifications(userID string) (Notifications, error) {
	rows, err := m.db.Query(selectUser, userID)
	if err != nil {
		return AllDisabled(), errors.Wrapf(err, "reading settings of %s", userID)
	}
	return readNotifications(rows)
}
