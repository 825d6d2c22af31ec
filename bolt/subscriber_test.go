package bolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamriver/herald"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db := NewDB(filepath.Join(t.TempDir(), "herald.db"))
	require.NoError(t, db.Open())
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func TestSubscriberAddUnsubscribeReactivate(t *testing.T) {
	ss := NewSubscriberService(newTestDB(t))

	outcome, err := ss.Add("foo@gmail.com", "Foo", "website")
	require.NoError(t, err)
	assert.Equal(t, herald.Subscribed, outcome)

	outcome, err = ss.Add("foo@gmail.com", "Foo", "website")
	require.NoError(t, err)
	assert.Equal(t, herald.AlreadySubscribed, outcome)

	require.NoError(t, ss.Unsubscribe("foo@gmail.com"))

	s, err := ss.FindByEmail("foo@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, herald.StatusUnsubscribed, s.Status)

	outcome, err = ss.Add("foo@gmail.com", "Foo Bar", "import")
	require.NoError(t, err)
	assert.Equal(t, herald.Reactivated, outcome)

	s, err = ss.FindByEmail("foo@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, herald.StatusActive, s.Status)
	assert.Equal(t, "Foo Bar", s.Name)
	assert.Equal(t, "import", s.Source)
}

func TestSubscriberCaseInsensitiveIdentity(t *testing.T) {
	ss := NewSubscriberService(newTestDB(t))

	outcome, err := ss.Add("Foo@Gmail.com", "", "website")
	require.NoError(t, err)
	assert.Equal(t, herald.Subscribed, outcome)

	outcome, err = ss.Add("  foo@gmail.com  ", "", "website")
	require.NoError(t, err)
	assert.Equal(t, herald.AlreadySubscribed, outcome)

	s, err := ss.FindByEmail("FOO@GMAIL.COM")
	require.NoError(t, err)
	assert.Equal(t, "foo@gmail.com", s.Email)
}

func TestSubscriberUnsubscribeNotFound(t *testing.T) {
	ss := NewSubscriberService(newTestDB(t))

	err := ss.Unsubscribe("nobody@gmail.com")
	assert.Equal(t, herald.ErrNotFound, herald.ErrorCode(err))
}

func TestSubscriberListActive(t *testing.T) {
	ss := NewSubscriberService(newTestDB(t))

	for _, email := range []string{"a@gmail.com", "b@gmail.com", "c@gmail.com"} {
		_, err := ss.Add(email, "", "website")
		require.NoError(t, err)
	}
	require.NoError(t, ss.Unsubscribe("b@gmail.com"))

	active, err := ss.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a@gmail.com", active[0].Email)
	assert.Equal(t, "c@gmail.com", active[1].Email)
}

func TestSubscriberListActiveEmpty(t *testing.T) {
	ss := NewSubscriberService(newTestDB(t))

	active, err := ss.ListActive()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRemoveDuplicatesKeepsEarliest(t *testing.T) {
	db := newTestDB(t)
	ss := NewSubscriberService(db)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, email := range []string{"foo@gmail.com", "Foo@Gmail.com", "foo@gmail.com", "bar@gmail.com"} {
		require.NoError(t, db.stormDB.Save(&herald.Subscriber{
			Email:     herald.NormalizeEmail(email),
			Status:    herald.StatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	result, err := ss.RemoveDuplicates()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Groups)
	assert.Equal(t, 2, result.Kept)
	assert.Equal(t, 2, result.Deleted)

	s, err := ss.FindByEmail("foo@gmail.com")
	require.NoError(t, err)
	assert.True(t, s.CreatedAt.Equal(base))

	active, err := ss.ListActive()
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
