package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vivaahlink/vivaah-backend/internal/services"
	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/utils"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

const welcomeMessage = `🎉 Welcome to our Matchmaking Service!

We're delighted to have you here. Your account has been successfully created, and we've received your biodata.

Our team will carefully review your profile and start finding compatible matches for you. We're committed to helping you find your perfect life partner.

You'll receive updates and match suggestions soon. Feel free to reach out if you have any questions.

Best wishes on your journey! 💫`

// CreateUserFlow is the admin flow that registers a new member: ask for the
// member's phone, create the user row, then ingest the biodata PDF.
type CreateUserFlow struct {
	deps Deps
}

func (f *CreateUserFlow) Initialize(ctx context.Context, adminPhone string) error {
	if err := f.deps.Conversations.StartFlow(ctx, adminPhone, types.FlowCreateUser, nil); err != nil {
		return err
	}
	if err := f.deps.Sender.SendText(ctx, adminPhone,
		"Please provide the WhatsApp number of the new user you want to add (include country code, e.g., 917779088399)",
	); err != nil {
		return err
	}
	return f.deps.Conversations.Advance(ctx, adminPhone, types.StepAwaitingPhone, nil)
}

func (f *CreateUserFlow) Handle(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	switch state.Step {
	case types.StepAwaitingPhone:
		return f.handlePhoneInput(ctx, state.Phone, msg)
	case types.StepAwaitingPDF:
		return f.handlePDFUpload(ctx, state, msg)
	}
	return nil
}

func (f *CreateUserFlow) handlePhoneInput(ctx context.Context, adminPhone string, msg *wa.Message) error {
	text, ok := msg.TextBody()
	if !ok {
		return nil
	}

	phone := utils.NormalizePhone(text)
	if phone == "" {
		return f.deps.Sender.SendText(ctx, adminPhone,
			"Please enter a valid phone number with country code (e.g., 917779088399)")
	}

	exists, err := f.deps.Users.UserExists(ctx, phone)
	if err != nil {
		return err
	}
	if exists {
		return f.deps.Sender.SendText(ctx, adminPhone,
			fmt.Sprintf("A user with phone number %s already exists. Please provide a different number.", phone))
	}

	user, err := f.deps.Users.CreateUser(ctx, phone, false)
	if err != nil {
		return err
	}
	f.deps.Log.Info("created new user", "userId", user.ID, "phone", phone)

	if err := f.deps.Conversations.Advance(ctx, adminPhone, types.StepAwaitingPDF, map[string]any{
		"newUserPhone": phone,
		"newUserId":    user.ID.String(),
	}); err != nil {
		return err
	}

	return f.deps.Sender.SendText(ctx, adminPhone,
		fmt.Sprintf("User created successfully! Please upload the biodata PDF for user %s.", phone))
}

func (f *CreateUserFlow) handlePDFUpload(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	adminPhone := state.Phone

	if msg.Type != wa.MessageTypeDocument || msg.Document == nil {
		return f.deps.Sender.SendText(ctx, adminPhone, "Please upload the biodata as a PDF document.")
	}
	if !utils.IsPDFDocument(msg.Document.MimeType) {
		return f.deps.Sender.SendText(ctx, adminPhone,
			"Please upload a PDF file only. Other formats are not supported.")
	}

	data := services.StateData(state)
	newUserPhone, _ := services.DataString(data, "newUserPhone")
	newUserID, err := stateUserID(data, "newUserId")
	if err != nil {
		f.deps.Log.Error("corrupt flow state", "phone", adminPhone, "error", err)
		return f.deps.Conversations.Clear(ctx, adminPhone)
	}

	if _, err := f.ingestPDF(ctx, adminPhone, msg.Document.ID, newUserID); err != nil {
		return f.notifyUploadError(ctx, adminPhone, err)
	}

	// Best effort: the new member may not be reachable yet (sandbox recipient
	// lists), and that must not fail the admin's flow.
	if err := f.deps.Sender.SendText(ctx, newUserPhone, welcomeMessage); err != nil {
		f.deps.Log.Warn("could not send welcome message to new user", "phone", newUserPhone, "error", err)
	} else if err := f.deps.Sender.SendTemplate(ctx, newUserPhone, "matchmaking_user"); err != nil {
		f.deps.Log.Warn("could not send welcome template to new user", "phone", newUserPhone, "error", err)
	}

	return f.deps.Conversations.Clear(ctx, adminPhone)
}

// ingestPDF downloads, extracts, and stores the biodata, replying to the
// admin as each stage lands.
func (f *CreateUserFlow) ingestPDF(ctx context.Context, adminPhone, mediaID string, userID uuid.UUID) (*services.BiodataExtraction, error) {
	f.deps.Log.Info("downloading biodata PDF", "mediaId", mediaID)
	pdf, err := f.deps.Media.DownloadMedia(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	if err := f.deps.Sender.SendText(ctx, adminPhone, "Processing your biodata PDF..."); err != nil {
		return nil, err
	}

	extracted, err := f.deps.Biodata.ExtractFromPDF(ctx, pdf)
	if err != nil {
		return nil, err
	}

	exists, err := f.deps.Biodata.ProfileExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if exists {
		f.deps.Log.Info("profile already exists, skipping insert", "userId", userID)
		return extracted, f.deps.Sender.SendText(ctx, adminPhone,
			fmt.Sprintf("✅ User creation completed! Biodata for %s %s was already saved.",
				extracted.FirstName, extracted.LastName))
	}

	if err := f.deps.Biodata.CreateProfile(ctx, userID, extracted); err != nil {
		if isDuplicateKeyErr(err) {
			f.deps.Log.Info("duplicate profile insert, data already saved", "userId", userID)
			return extracted, nil
		}
		return nil, fmt.Errorf("database: %w", err)
	}

	return extracted, f.deps.Sender.SendText(ctx, adminPhone,
		fmt.Sprintf("✅ User creation completed! We have saved %s %s's biodata.",
			extracted.FirstName, extracted.LastName))
}

func (f *CreateUserFlow) notifyUploadError(ctx context.Context, adminPhone string, err error) error {
	f.deps.Log.Error("error processing biodata PDF", "phone", adminPhone, "error", err)
	return f.deps.Sender.SendText(ctx, adminPhone, pdfErrorMessage(err, "save"))
}

// pdfErrorMessage picks the user-facing message for a failed PDF ingest. The
// flow stays on the PDF step so the admin can retry the upload.
func pdfErrorMessage(err error, verb string) string {
	errText := err.Error()
	switch {
	case strings.Contains(errText, "extract"):
		return "Could not extract information from the PDF. Please ensure the biodata is clearly written and try uploading again."
	case strings.Contains(errText, "download"):
		return "Failed to download the PDF from WhatsApp. Please try uploading again."
	case strings.Contains(errText, "database"):
		return fmt.Sprintf("Failed to %s biodata to database. Please try uploading the file again.", verb)
	default:
		return "Failed to process the biodata PDF. Please upload the file again."
	}
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint")
}
