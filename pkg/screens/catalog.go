// Package screens holds the per-screen listing configuration of the
// NearByTask admin dashboard and wires it into a listing.Registry.
package screens

import (
	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/pkg/records"
)

// Screen codes.
const (
	CodeUsers         = "users"
	CodeDisputes      = "disputes"
	CodeTaskTaken     = "task-taken"
	CodeFeedback      = "feedback"
	CodeLogs          = "logs"
	CodePayments      = "payments"
	CodeComplaints    = "complaints"
	CodeConversations = "conversations"
)

// Categories group screens in the admin menu.
const (
	CategoryPeople     = "People"
	CategoryOperations = "Operations"
	CategoryFinance    = "Finance"
	CategoryModeration = "Moderation"
)

const defaultPageSize = 10

var standardPagination = listing.PaginationPolicy{Width: 5, Ellipsis: true}

// Catalog returns the built-in screen definitions in menu order.
func Catalog() []listing.ScreenDefinition {
	return []listing.ScreenDefinition{
		{
			Code: CodeUsers, Name: "Users", Description: "Registered posters and taskers.",
			Category: CategoryPeople, Path: "/admin/users", Collection: "users", Schema: records.SchemaUser,
			PageSize: defaultPageSize, Pagination: standardPagination, ExportName: "Users", ExportTitle: "Users Report",
		},
		{
			Code: CodeDisputes, Name: "Disputes", Description: "Disputes raised between task parties.",
			Category: CategoryModeration, Path: "/admin/disputes", Collection: "disputes", Schema: records.SchemaDispute,
			PageSize: defaultPageSize, Pagination: standardPagination, ExportName: "Disputes", ExportTitle: "Disputes Report",
		},
		{
			Code: CodeTaskTaken, Name: "Task Taken", Description: "Tasks accepted by taskers.",
			Category: CategoryOperations, Path: "/admin/tasks-taken", Collection: "tasks", Schema: records.SchemaTaskTaken,
			PageSize: 5, Pagination: listing.PaginationPolicy{Width: 3}, ExportName: "TaskTaken", ExportTitle: "Task Taken Report",
		},
		{
			Code: CodeFeedback, Name: "Feedback", Description: "Ratings and comments left by users.",
			Category: CategoryPeople, Path: "/admin/feedback", Collection: "feedback", Schema: records.SchemaFeedback,
			PageSize: defaultPageSize, Pagination: standardPagination, ExportName: "Feedback", ExportTitle: "Feedback Report",
		},
		{
			Code: CodeLogs, Name: "Logs", Description: "Audit trail of platform actions.",
			Category: CategoryOperations, Path: "/admin/logs", Collection: "logs", Schema: records.SchemaLogEntry,
			PageSize: 20, Pagination: standardPagination, ExportName: "Logs", ExportTitle: "Activity Logs",
		},
		{
			Code: CodePayments, Name: "Payments", Description: "Payments between posters and taskers.",
			Category: CategoryFinance, Path: "/admin/payments", Collection: "payments", Schema: records.SchemaPayment,
			PageSize: defaultPageSize, Pagination: standardPagination, ExportName: "Payments", ExportTitle: "Payments Report",
		},
		{
			Code: CodeComplaints, Name: "Complaints", Description: "Reports filed against users or content.",
			Category: CategoryModeration, Path: "/admin/complaints", Collection: "complaints", Schema: records.SchemaComplaint,
			PageSize: defaultPageSize, Pagination: standardPagination, ExportName: "Complaints", ExportTitle: "Complaints Report",
		},
		{
			Code: CodeConversations, Name: "User Communication", Description: "Message threads between users.",
			Category: CategoryModeration, Path: "/admin/conversations", Collection: "conversations", Schema: records.SchemaConversation,
			PageSize: defaultPageSize, Pagination: standardPagination, ExportName: "UserCommunication", ExportTitle: "User Communication Report",
		},
	}
}

// Definition returns the built-in definition for code.
func Definition(code string) (listing.ScreenDefinition, bool) {
	for _, def := range Catalog() {
		if def.Code == code {
			return def, true
		}
	}
	return listing.ScreenDefinition{}, false
}
