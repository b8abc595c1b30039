package docstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrann-dev/school-erp-api/internal/models"
)

func newSettingsStore() *Store {
	return New(KindSettings, NewMemoryPersistence(), SettingsDefaults, nil)
}

func TestStoreGetInitialisesDefaultOnce(t *testing.T) {
	store := newSettingsStore()

	doc, err := store.Get(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	require.Contains(t, doc, "profile")
	require.Contains(t, doc, "notifications")
	require.Contains(t, doc, "preferences")

	notifications, ok := doc["notifications"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, notifications["emailNotifications"])
	assert.Equal(t, true, notifications["feeReminders"])

	again, err := store.Get(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestStoreUpdateSectionPatchesOnlyNamedFields(t *testing.T) {
	store := newSettingsStore()

	events := []Event{}
	unsubscribe := store.Subscribe(models.RoleStudent, func(e Event) {
		events = append(events, e)
	})
	defer unsubscribe()

	doc, err := store.UpdateSection(context.Background(), models.RoleStudent, "notifications", models.Document{
		"emailNotifications": false,
	})
	require.NoError(t, err)

	notifications := doc["notifications"].(map[string]interface{})
	assert.Equal(t, false, notifications["emailNotifications"])
	assert.Equal(t, true, notifications["pushNotifications"])
	assert.Equal(t, true, notifications["gradeUpdates"])
	assert.Contains(t, doc, "profile")

	require.Len(t, events, 1)
	assert.Equal(t, models.RoleStudent, events[0].Key)
	assert.Equal(t, "notifications", events[0].Section)
}

func TestStoreUpdateSectionDeliversPatchedDocument(t *testing.T) {
	store := newSettingsStore()

	var delivered models.Document
	unsubscribe := store.Subscribe(models.RoleStudent, func(e Event) {
		delivered = e.Document
	})
	defer unsubscribe()

	_, err := store.UpdateSection(context.Background(), models.RoleStudent, "profile", models.Document{
		"fullName": "X",
	})
	require.NoError(t, err)

	require.NotNil(t, delivered)
	profile := delivered["profile"].(map[string]interface{})
	assert.Equal(t, "X", profile["fullName"])
}

func TestStoreSubscribeIsKeyScoped(t *testing.T) {
	store := newSettingsStore()

	notified := 0
	unsubscribe := store.Subscribe(models.RoleTeacher, func(Event) { notified++ })
	defer unsubscribe()

	_, err := store.UpdateSection(context.Background(), models.RoleStudent, "profile", models.Document{"bio": "hi"})
	require.NoError(t, err)
	assert.Equal(t, 0, notified)

	_, err = store.UpdateSection(context.Background(), models.RoleTeacher, "preferences", models.Document{"language": "French"})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}

func TestStoreUnsubscribeStopsDelivery(t *testing.T) {
	store := newSettingsStore()

	notified := 0
	unsubscribe := store.Subscribe(models.RoleParent, func(Event) { notified++ })

	_, err := store.Update(context.Background(), models.RoleParent, models.Document{"extra": 1})
	require.NoError(t, err)
	unsubscribe()

	_, err = store.Update(context.Background(), models.RoleParent, models.Document{"extra": 2})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}

func TestStoreInstancesDoNotInterfere(t *testing.T) {
	first := newSettingsStore()
	second := newSettingsStore()

	notified := 0
	unsubscribe := second.Subscribe(models.RoleAdmin, func(Event) { notified++ })
	defer unsubscribe()

	_, err := first.Update(context.Background(), models.RoleAdmin, models.Document{"extra": true})
	require.NoError(t, err)
	assert.Equal(t, 0, notified)
}

func TestStoreResetRestoresDefaults(t *testing.T) {
	store := newSettingsStore()

	_, err := store.UpdateSection(context.Background(), models.RoleStudent, "profile", models.Document{"fullName": "Changed"})
	require.NoError(t, err)

	doc, err := store.Reset(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	profile := doc["profile"].(map[string]interface{})
	assert.Equal(t, "", profile["fullName"])
}

func TestStoreConcurrentSectionUpdatesKeepBothWrites(t *testing.T) {
	store := newSettingsStore()

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := store.UpdateSection(context.Background(), models.RoleStudent, "profile", models.Document{
				"fullName": "Priya Singh",
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := store.UpdateSection(context.Background(), models.RoleStudent, "preferences", models.Document{
				"language": "Hindi",
			})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	doc, err := store.Get(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	profile := doc["profile"].(map[string]interface{})
	preferences := doc["preferences"].(map[string]interface{})
	assert.Equal(t, "Priya Singh", profile["fullName"])
	assert.Equal(t, "Hindi", preferences["language"])
}

func TestStoreUpdateStampsTimestamp(t *testing.T) {
	store := New(KindTimetable, NewMemoryPersistence(), TimetableDefaults, nil)

	doc, err := store.Update(context.Background(), TimetableKey, models.Document{})
	require.NoError(t, err)
	assert.NotEmpty(t, doc["updatedAt"])
}
