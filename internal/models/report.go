package models

import (
	"time"

	"mawadda-service/internal/store"
)

// ReportType distinguishes what is being reported.
type ReportType string

const (
	ReportProfile ReportType = "profile"
	ReportMessage ReportType = "message"
)

// ReportStatus is the review state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is the reports/{id} document. Reported data is snapshotted at
// report time so review survives later edits or deletions.
type Report struct {
	ID                  string         `json:"id"`
	ReportType          ReportType     `json:"report_type"`
	ReporterID          string         `json:"reporter_id"`
	ReportedUserID      string         `json:"reported_user_id"`
	ReportedProfileData map[string]any `json:"reported_profile_data,omitempty"`
	ReportedMessageData map[string]any `json:"reported_message_data,omitempty"`
	Reason              string         `json:"reason"`
	ReasonArabic        string         `json:"reason_arabic,omitempty"`
	Description         string         `json:"description,omitempty"`
	Status              ReportStatus   `json:"status"`
	ReviewedBy          string         `json:"reviewed_by,omitempty"`
	ReviewedAt          time.Time      `json:"reviewed_at,omitempty"`
	AdminNotes          string         `json:"admin_notes,omitempty"`
	ActionTaken         string         `json:"action_taken,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// ReportFromDoc decodes a reports/{id} document.
func ReportFromDoc(d store.Doc) Report {
	return Report{
		ID:                  d.ID,
		ReportType:          ReportType(docString(d.Data, "reportType")),
		ReporterID:          docString(d.Data, "reporterId"),
		ReportedUserID:      docString(d.Data, "reportedUserId"),
		ReportedProfileData: docMap(d.Data, "reportedProfileData"),
		ReportedMessageData: docMap(d.Data, "reportedMessageData"),
		Reason:              docString(d.Data, "reason"),
		ReasonArabic:        docString(d.Data, "reasonArabic"),
		Description:         docString(d.Data, "description"),
		Status:              ReportStatus(docString(d.Data, "status")),
		ReviewedBy:          docString(d.Data, "reviewedBy"),
		ReviewedAt:          docTime(d.Data, "reviewedAt"),
		AdminNotes:          docString(d.Data, "adminNotes"),
		ActionTaken:         docString(d.Data, "actionTaken"),
		CreatedAt:           docTime(d.Data, "createdAt"),
	}
}

// Fields returns the document representation for inserts.
func (r Report) Fields() map[string]any {
	fields := map[string]any{
		"reportType":     string(r.ReportType),
		"reporterId":     r.ReporterID,
		"reportedUserId": r.ReportedUserID,
		"reason":         r.Reason,
		"status":         string(ReportPending),
		"createdAt":      store.ServerTimestamp(),
	}
	if r.ReasonArabic != "" {
		fields["reasonArabic"] = r.ReasonArabic
	}
	if r.Description != "" {
		fields["description"] = r.Description
	}
	if r.ReportedProfileData != nil {
		fields["reportedProfileData"] = r.ReportedProfileData
	}
	if r.ReportedMessageData != nil {
		fields["reportedMessageData"] = r.ReportedMessageData
	}
	return fields
}
