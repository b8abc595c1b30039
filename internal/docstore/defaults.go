package docstore

import (
	"time"

	"github.com/imrann-dev/school-erp-api/internal/models"
)

// Store kinds and fixed keys.
const (
	KindSettings       = "settings"
	KindTimetable      = "timetable"
	KindCommunications = "communications"

	TimetableKey      = "school"
	CommunicationsKey = "school"
)

func commonSettings() models.Document {
	now := time.Now().UTC().Format(time.RFC3339)
	return models.Document{
		"notifications": map[string]interface{}{
			"emailNotifications": true,
			"pushNotifications":  true,
			"smsNotifications":   false,
		},
		"security": map[string]interface{}{
			"twoFactorAuth":      false,
			"lastPasswordChange": now,
		},
		"updatedAt": now,
	}
}

// SettingsDefaults synthesizes the per-portal settings document. Shapes
// follow the portal clients: each role sees a different set of profile
// fields and notification toggles.
func SettingsDefaults(role string) models.Document {
	doc := commonSettings()
	notifications := doc["notifications"].(map[string]interface{})

	switch role {
	case models.RoleStudent:
		doc["profile"] = map[string]interface{}{
			"fullName": "",
			"email":    "",
			"phone":    "",
			"role":     "Student",
			"address":  "",
			"bio":      "",
		}
		for field, value := range map[string]interface{}{
			"assignmentReminders": true,
			"gradeUpdates":        true,
			"attendanceAlerts":    false,
			"transportUpdates":    true,
			"libraryReminders":    true,
			"feeReminders":        true,
		} {
			notifications[field] = value
		}
		doc["appearance"] = map[string]interface{}{
			"theme":    "light",
			"fontSize": "medium",
			"language": "English",
		}
		doc["preferences"] = map[string]interface{}{
			"defaultPage":  "Dashboard",
			"itemsPerPage": 20,
			"dateFormat":   "MM/DD/YYYY",
			"timeFormat":   "12-hour",
		}

	case models.RoleTeacher:
		doc["profile"] = map[string]interface{}{
			"name":          "",
			"email":         "",
			"phone":         "",
			"address":       "",
			"dateOfBirth":   "",
			"employeeId":    "",
			"department":    "",
			"qualification": "",
			"experience":    "",
		}
		for field, value := range map[string]interface{}{
			"assignmentReminders": true,
			"gradeUpdates":        true,
			"attendanceAlerts":    true,
			"parentMessages":      true,
			"systemUpdates":       false,
		} {
			notifications[field] = value
		}
		doc["preferences"] = map[string]interface{}{
			"language":   "English",
			"timezone":   "UTC-5 (EST)",
			"dateFormat": "MM/DD/YYYY",
			"theme":      "System Default",
		}

	case models.RoleParent:
		doc["profile"] = map[string]interface{}{
			"name":         "",
			"email":        "",
			"phone":        "",
			"address":      "",
			"relationship": "",
		}
		for field, value := range map[string]interface{}{
			"gradeUpdates":       true,
			"attendanceAlerts":   true,
			"feeReminders":       true,
			"eventNotifications": true,
		} {
			notifications[field] = value
		}

	case models.RoleAdmin:
		doc["general"] = map[string]interface{}{
			"schoolName": "ABC International School",
			"email":      "",
			"phone":      "",
			"address":    "",
			"timezone":   "UTC-5 (EST)",
			"language":   "English",
			"currency":   "USD",
		}
		notifications["systemUpdates"] = true
	}

	return doc
}

// TimetableDefaults is the empty school timetable: teacher timetables
// plus per-class student timetables.
func TimetableDefaults(string) models.Document {
	return models.Document{
		"teachers": []interface{}{},
		"students": []interface{}{},
	}
}

// CommunicationsDefaults is the empty communications document.
func CommunicationsDefaults(string) models.Document {
	return models.Document{
		"messages":      []interface{}{},
		"conversations": []interface{}{},
		"announcements": []interface{}{},
		"notifications": []interface{}{},
	}
}
