package service

import (
	"testing"

	"github.com/jvincentbasto/my-space/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	d, err := db.New("sqlite", ":memory:")
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return d
}

type sentCode struct {
	to, code string
}

type fakeMailer struct {
	sent []sentCode
	err  error
}

func (m *fakeMailer) SendOTP(to, code string) error {
	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, sentCode{to: to, code: code})
	return nil
}

func (m *fakeMailer) last() string {
	if len(m.sent) == 0 {
		return ""
	}

	return m.sent[len(m.sent)-1].code
}
