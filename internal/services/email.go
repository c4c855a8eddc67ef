package services

import (
	"fmt"
	"os"

	"github.com/delta/research-portal/internal/models"
	"gorm.io/gorm"
)

// portalAdminEmail is copied on every project lifecycle mail.
const portalAdminEmail = "delta@nitt.edu"

func backendRootURL() string {
	if url := os.Getenv("BACKEND_ROOT_APP_URL"); url != "" {
		return url
	}
	return "http://localhost:8000"
}

func frontendBaseURL() string {
	if url := os.Getenv("FRONTEND_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:3000/"
}

func htmlBody(content, link, linkText string) string {
	return fmt.Sprintf(`<html><body><p>%s</p><p><a href=%q>%s</a></p></body></html>`,
		content, link, linkText)
}

// SendVerificationEmail mails the account-activation link to a freshly
// registered user.
func SendVerificationEmail(user *models.User) bool {
	link := fmt.Sprintf("%s/api/user/verify?auth_token=%s", backendRootURL(), user.AuthToken)

	text := fmt.Sprintf(`Welcome to the Research Portal, %s.
Visit %s to verify your account.`, user.Name, link)

	html := htmlBody(
		fmt.Sprintf("Welcome to the Research Portal, %s.", user.Name),
		link,
		"Click here to verify your account",
	)

	return Mail.SendMessage([]string{user.Email}, "Verify your Research Portal account", text, html)
}

// SendResetPasswordEmail mails the password-reset link to the user.
func SendResetPasswordEmail(user *models.User) bool {
	link := fmt.Sprintf("%sreset_password?token=%s", frontendBaseURL(), user.AuthToken)

	text := fmt.Sprintf(`A password reset was requested for your Research Portal account.
Visit %s to choose a new password. If you did not request this, ignore this mail.`, link)

	html := htmlBody(
		"A password reset was requested for your Research Portal account. If you did not request this, ignore this mail.",
		link,
		"Click here to reset your password",
	)

	return Mail.SendMessage([]string{user.Email}, "Reset your Research Portal password", text, html)
}

// projectRecipients lists the member emails of a project plus the portal
// admin address.
func projectRecipients(database *gorm.DB, project *models.Project) []string {
	var relationships []models.ProjectMemberRelationship

	recipients := []string{}

	err := database.Preload("User").
		Where("project_id = ?", project.ID).
		Find(&relationships).Error

	if err == nil {
		for _, relationship := range relationships {
			recipients = append(recipients, relationship.User.Email)
		}
	}

	return append(recipients, portalAdminEmail)
}

func sendProjectEmail(database *gorm.DB, project *models.Project, subject, event string) bool {
	link := fmt.Sprintf("%s/api/project/id?projectId=%d", backendRootURL(), project.ID)

	text := fmt.Sprintf(`A project has been %s in the Research Portal.
Title: %s,
Abstract: %s,
Visit %s to learn more.`, event, project.Name, project.Abstract, link)

	html := htmlBody(
		fmt.Sprintf("A project has been %s in the Research Portal.<br>Title: %s<br>Abstract: %s",
			event, project.Name, project.Abstract),
		link,
		"Click here to learn more",
	)

	return Mail.SendMessage(projectRecipients(database, project), subject, text, html)
}

// SendProjectCreationEmail notifies the members of a newly created project.
func SendProjectCreationEmail(database *gorm.DB, project *models.Project) bool {
	return sendProjectEmail(database, project, "A new project has been created!", "added")
}

// SendProjectEditEmail notifies the members of an edited project.
func SendProjectEditEmail(database *gorm.DB, project *models.Project) bool {
	return sendProjectEmail(database, project, "A project has been edited!", "edited")
}
