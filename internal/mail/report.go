package mail

import (
	"fmt"

	"github.com/TeamMacLean/komondor-api-sub000/internal/services"
)

// VerificationReport builds the notification sent after a run's checksums
// have been verified.
func VerificationReport(to string, result services.VerifyRunResult) SendEmailRequest {
	subject := fmt.Sprintf("MD5 verification complete: %s", result.RunName)
	if result.Mismatches > 0 {
		subject = fmt.Sprintf("MD5 verification found %d mismatch(es): %s", result.Mismatches, result.RunName)
	}

	text := fmt.Sprintf(
		"Run: %s (%s)\nFiles verified: %d\nMismatches: %d\nErrors: %d\nDuration: %dms\n",
		result.RunName, result.RunID, result.FilesVerified, result.Mismatches, result.Errors, result.DurationMS,
	)

	return SendEmailRequest{
		To:      []EmailAddress{{Email: to}},
		Subject: subject,
		Text:    text,
	}
}
