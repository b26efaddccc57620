package store

import "fmt"

// Key layout. These structured strings are the wire format of the store;
// changing a prefix is a data migration.
func UserKey(userID string) string       { return "user:" + userID }
func EmailKey(email string) string       { return "email:" + email }
func OrgKey(orgID string) string         { return "org:" + orgID }
func OrgServicesKey(orgID string) string { return "org_services:" + orgID }
func ServiceKey(serviceID string) string { return "service:" + serviceID }
func RemindersKey(orgID string) string   { return "reminders:" + orgID }
func AckKey(reminderID string) string    { return "acknowledgment:" + reminderID }

func CostHistoryKey(orgID, serviceID string) string {
	return fmt.Sprintf("cost_history:%s:%s", orgID, serviceID)
}

func IntegrationKey(orgID, integrationType string) string {
	return fmt.Sprintf("integration:%s:%s", orgID, integrationType)
}

func IntegrationPattern(orgID string) string {
	return fmt.Sprintf("integration:%s:*", orgID)
}

func ReminderNotifiedKey(orgID, serviceID string, dueTS int64) string {
	return fmt.Sprintf("reminder_notified:%s:%s:%d", orgID, serviceID, dueTS)
}

const OrgPattern = "org:*"
