package mail

import (
	"fmt"
	"time"
)

// PasswordReset builds the reset-link email. The link embeds the one-time
// token and expires after the window communicated in the body.
func PasswordReset(to, frontendURL, token string, ttl time.Duration) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, token)
	return Message{
		To:      to,
		Subject: "Reset your Spot2Go password",
		TextBody: fmt.Sprintf(
			"We received a request to reset your Spot2Go password.\n\n"+
				"Open the link below to choose a new one. The link expires in %s.\n\n%s\n\n"+
				"If you did not request this, you can safely ignore this email.\n",
			formatTTL(ttl), link),
		HTMLBody: fmt.Sprintf(
			"<p>We received a request to reset your Spot2Go password.</p>"+
				"<p><a href=%q>Choose a new password</a> (expires in %s).</p>"+
				"<p>If you did not request this, you can safely ignore this email.</p>",
			link, formatTTL(ttl)),
	}
}

// PasswordResetConfirmation notifies the user after a successful reset.
func PasswordResetConfirmation(to string) Message {
	return Message{
		To:      to,
		Subject: "Your Spot2Go password was changed",
		TextBody: "Your Spot2Go password was just changed.\n\n" +
			"If this was you, no further action is needed. If not, reset your password immediately.\n",
		HTMLBody: "<p>Your Spot2Go password was just changed.</p>" +
			"<p>If this was you, no further action is needed. If not, reset your password immediately.</p>",
	}
}

// BookingConfirmation is sent to the customer when a booking is created.
func BookingConfirmation(to, placeName string, startsAt, endsAt time.Time) Message {
	window := fmt.Sprintf("%s to %s",
		startsAt.Format("Mon, 2 Jan 2006 15:04"),
		endsAt.Format("15:04 MST"))
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Booking confirmed at %s", placeName),
		TextBody: fmt.Sprintf(
			"Your booking at %s is confirmed.\n\nWhen: %s\n\nSee you there!\n",
			placeName, window),
		HTMLBody: fmt.Sprintf(
			"<p>Your booking at <strong>%s</strong> is confirmed.</p><p>When: %s</p>",
			placeName, window),
	}
}

// PlaceDecision notifies an owner about a moderation decision on their place.
func PlaceDecision(to, placeName, status string) Message {
	var body string
	switch status {
	case "approved":
		body = fmt.Sprintf("Good news! Your place %q was approved and is now visible to customers.", placeName)
	default:
		body = fmt.Sprintf("Your place %q was not approved. You can update the listing and resubmit it for review.", placeName)
	}
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Update on your place %q", placeName),
		TextBody: body + "\n",
		HTMLBody: "<p>" + body + "</p>",
	}
}

func formatTTL(ttl time.Duration) string {
	if ttl >= time.Hour {
		hours := int(ttl.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(ttl.Minutes()))
}
