package service

import (
	"fmt"

	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/pkg/mailer"
)

var documentChecklist = []string{
	"Birth certificate (original + photocopy)",
	"Recent passport-size photographs (4)",
	"Aadhaar card of the child (photocopy)",
	"Parent ID proof (photocopy)",
	"Immunization record",
	"Transfer certificate, if applicable",
}

// documentsRequiredMail asks the family to submit the admission
// documents via the tracking link.
func documentsRequiredMail(app *models.Application, schoolName, trackingURL string) mailer.Message {
	body := fmt.Sprintf("Dear %s,\n\nThank you for your interest in %s. To proceed with the admission of %s, please submit the following documents:\n\n",
		app.ParentName, schoolName, app.StudentName)
	for _, item := range documentChecklist {
		body += fmt.Sprintf("  - %s\n", item)
	}
	body += fmt.Sprintf("\nYou can upload the documents and follow your application here:\n%s\n\nReference number: %s\n\nWarm regards,\n%s",
		trackingURL, app.ReferenceNumber, schoolName)

	return mailer.Message{
		ToName:    app.ParentName,
		ToAddress: app.Email,
		Subject:   fmt.Sprintf("Documents required for %s's admission", app.StudentName),
		TextBody:  body,
	}
}

// documentsVerifiedMail confirms that the submitted documents passed
// review.
func documentsVerifiedMail(app *models.Application, schoolName string) mailer.Message {
	body := fmt.Sprintf("Dear %s,\n\nThe documents submitted for %s have been verified. We will reach out shortly with the next steps of the admission process.\n\nReference number: %s\n\nWarm regards,\n%s",
		app.ParentName, app.StudentName, app.ReferenceNumber, schoolName)

	return mailer.Message{
		ToName:    app.ParentName,
		ToAddress: app.Email,
		Subject:   fmt.Sprintf("Documents verified for %s's admission", app.StudentName),
		TextBody:  body,
	}
}

// onHoldMail relays the hold reason to the family, remarks verbatim.
func onHoldMail(app *models.Application, schoolName, remarks string) mailer.Message {
	body := fmt.Sprintf("Dear %s,\n\nThe admission application for %s has been placed on hold.\n\nReason: %s\n\nReference number: %s\n\nPlease contact the school office for clarification.\n\nWarm regards,\n%s",
		app.ParentName, app.StudentName, remarks, app.ReferenceNumber, schoolName)

	return mailer.Message{
		ToName:    app.ParentName,
		ToAddress: app.Email,
		Subject:   fmt.Sprintf("Update on %s's admission application", app.StudentName),
		TextBody:  body,
	}
}

// rejectedMail informs the family without detailing the decision.
func rejectedMail(app *models.Application, schoolName string) mailer.Message {
	body := fmt.Sprintf("Dear %s,\n\nWe regret to inform you that the admission application for %s could not be taken forward at this time.\n\nReference number: %s\n\nWe thank you for considering %s and wish %s the very best.\n\nWarm regards,\n%s",
		app.ParentName, app.StudentName, app.ReferenceNumber, schoolName, app.StudentName, schoolName)

	return mailer.Message{
		ToName:    app.ParentName,
		ToAddress: app.Email,
		Subject:   fmt.Sprintf("Update on %s's admission application", app.StudentName),
		TextBody:  body,
	}
}
