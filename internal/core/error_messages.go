package core

// error_messages.go defines the error code catalogue.
//
// Every finding the parser reports carries one of the codes below so support
// staff can match a user's screenshot to a rule. Technical errors raised
// around the parser (HTTP, history store, cache) are mapped to user-facing
// messages with MapError.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - File could not be read (corrupt workbook, broken CSV quoting)
//	FILE003 - No recognized layout (fatal)
//	FILE004 - Unsupported file type
//
// # Section Errors (SEC001-SEC099)
//
//	SEC001 - Section or sheet has no header/data rows
//	SEC002 - Rows found outside any section (warning)
//	SEC003 - No project row found
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date
//	VAL002 - Invalid number
//	VAL003 - Required field is empty
//	VAL004 - Value out of range
//	VAL005 - Invalid format (radius, time)
//	VAL006 - Value not in the allowed vocabulary
//	VAL007 - Paired fields incomplete (latitude/longitude, time window, custom period)
//	VAL008 - End precedes start
//	VAL009 - Value too long
//
// # Reference Errors (REF001-REF099)
//
//	REF001 - Referenced segment does not exist
//	REF002 - Segment reference is empty
//	REF003 - Visit-measurement group name is empty
//
// # Business Rule Errors (BIZ001-BIZ099)
//
//	BIZ001 - CTV combined with other media on one row
//	BIZ010 - More than one project (warning)
//	BIZ011 - Duplicate segment names
//	BIZ012 - CTV and non-CTV media mixed in the document
//	BIZ013 - Resident/worker audience without the 3-month period

import (
	"fmt"
	"strings"
)

const (
	CodeFileTooLarge   = "FILE001"
	CodeFileUnreadable = "FILE002"
	CodeNoLayout       = "FILE003"
	CodeUnsupported    = "FILE004"

	CodeSectionEmpty   = "SEC001"
	CodeOutsideSection = "SEC002"
	CodeNoProject      = "SEC003"

	CodeInvalidDate   = "VAL001"
	CodeInvalidNumber = "VAL002"
	CodeRequired      = "VAL003"
	CodeOutOfRange    = "VAL004"
	CodeInvalidFormat = "VAL005"
	CodeUnmapped      = "VAL006"
	CodeUnpaired      = "VAL007"
	CodeOrder         = "VAL008"
	CodeTooLong       = "VAL009"

	CodeUnknownSegment = "REF001"
	CodeMissingSegment = "REF002"
	CodeMissingGroup   = "REF003"

	CodeCTVMixedRow      = "BIZ001"
	CodeMultipleProjects = "BIZ010"
	CodeDuplicateNames   = "BIZ011"
	CodeCTVMixedDocument = "BIZ012"
	CodeLockedPeriod     = "BIZ013"
)

// UserMessage contains user-friendly error information.
type UserMessage struct {
	Message string // User-friendly error message
	Action  string // Suggested action to resolve
	Code    string // Error code for support reference
}

// errorPattern maps an error substring pattern to a user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is checked in order; the first match wins.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "ファイルサイズが上限を超えています",
			Action:  "シートを分割して再度アップロードしてください",
			Code:    CodeFileTooLarge,
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "ファイルが選択されていません",
			Action:  "Excelまたはcsvファイルを選択してください",
			Code:    CodeFileUnreadable,
		},
	},
	{
		pattern: "failed to open xlsx",
		msg: UserMessage{
			Message: "Excelファイルを読み込めませんでした",
			Action:  "テンプレートから作成した.xlsxファイルか確認してください",
			Code:    CodeFileUnreadable,
		},
	},
	{
		pattern: "read csv",
		msg: UserMessage{
			Message: "CSVファイルを読み込めませんでした",
			Action:  "ダブルクォートの対応とカンマ区切りを確認してください",
			Code:    CodeFileUnreadable,
		},
	},
	{
		pattern: "unsupported file",
		msg: UserMessage{
			Message: "対応していないファイル形式です",
			Action:  ".xlsx または .csv ファイルをアップロードしてください",
			Code:    CodeUnsupported,
		},
	},

	// Import processing
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "他の取り込みを処理中です",
			Action:  "しばらく待ってから再度お試しください",
			Code:    "IMP001",
		},
	},
	{
		pattern: "shutting down",
		msg: UserMessage{
			Message: "サーバーを停止しています",
			Action:  "しばらく待ってから再度お試しください",
			Code:    "IMP007",
		},
	},
	{
		pattern: "import not found",
		msg: UserMessage{
			Message: "取り込み履歴が見つかりません",
			Action:  "履歴一覧から対象を選び直してください",
			Code:    "IMP002",
		},
	},
	{
		pattern: "history disabled",
		msg: UserMessage{
			Message: "取り込み履歴は無効になっています",
			Action:  "管理者にお問い合わせください",
			Code:    "IMP003",
		},
	},
	{
		pattern: "unsupported report format",
		msg: UserMessage{
			Message: "エラーレポートの形式が正しくありません",
			Action:  "format に csv または xlsx を指定してください",
			Code:    "IMP006",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "リクエストがキャンセルされました",
			Action:  "再度お試しください",
			Code:    "IMP004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "処理がタイムアウトしました",
			Action:  "ファイルを分割するか時間をおいて再度お試しください",
			Code:    "IMP005",
		},
	},

	// Backing stores
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "データベースに接続できません",
			Action:  "しばらく待ってから再度お試しください",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "データベース接続が中断されました",
			Action:  "再度お試しください",
			Code:    "DB005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "リクエストが多すぎます",
			Action:  "少し待ってから再度お試しください",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "予期しないエラーが発生しました",
	Action:  "再度お試しいただくか、管理者にお問い合わせください",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Patterns are matched case-insensitively; the fallback has code ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
