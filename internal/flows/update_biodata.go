package flows

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vivaahlink/vivaah-backend/internal/services"
	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/utils"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

// UpdateBiodataFlow is the admin flow that replaces an existing member's
// biodata: ask for the member's phone, verify the account, ingest a new PDF.
type UpdateBiodataFlow struct {
	deps Deps
}

func (f *UpdateBiodataFlow) Initialize(ctx context.Context, adminPhone string) error {
	if err := f.deps.Conversations.StartFlow(ctx, adminPhone, types.FlowUpdateBio, nil); err != nil {
		return err
	}
	if err := f.deps.Sender.SendText(ctx, adminPhone,
		"Please provide the WhatsApp number of the user whose biodata you want to update (include country code, e.g., 917779088399)",
	); err != nil {
		return err
	}
	return f.deps.Conversations.Advance(ctx, adminPhone, types.StepAwaitingPhone, nil)
}

func (f *UpdateBiodataFlow) Handle(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	switch state.Step {
	case types.StepAwaitingPhone:
		return f.handlePhoneInput(ctx, state.Phone, msg)
	case types.StepAwaitingPDF:
		return f.handlePDFUpload(ctx, state, msg)
	}
	return nil
}

func (f *UpdateBiodataFlow) handlePhoneInput(ctx context.Context, adminPhone string, msg *wa.Message) error {
	text, ok := msg.TextBody()
	if !ok {
		return nil
	}

	phone := utils.NormalizePhone(text)
	if phone == "" {
		return f.deps.Sender.SendText(ctx, adminPhone,
			"Please enter a valid phone number with country code (e.g., 917779088399)")
	}

	user, err := f.deps.Users.GetUserByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if user == nil {
		return f.deps.Sender.SendText(ctx, adminPhone,
			fmt.Sprintf("❌ User with phone number %s does not exist in the database. Please provide a valid phone number that exists.", phone))
	}

	if err := f.deps.Conversations.Advance(ctx, adminPhone, types.StepAwaitingPDF, map[string]any{
		"targetUserPhone": phone,
		"targetUserId":    user.ID.String(),
	}); err != nil {
		return err
	}

	return f.deps.Sender.SendText(ctx, adminPhone,
		fmt.Sprintf("User found! Please upload the updated biodata PDF for user %s.", phone))
}

func (f *UpdateBiodataFlow) handlePDFUpload(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	adminPhone := state.Phone

	if msg.Type != wa.MessageTypeDocument || msg.Document == nil {
		return f.deps.Sender.SendText(ctx, adminPhone, "Please upload the biodata as a PDF document.")
	}
	if !utils.IsPDFDocument(msg.Document.MimeType) {
		return f.deps.Sender.SendText(ctx, adminPhone,
			"Please upload a PDF file only. Other formats are not supported.")
	}

	data := services.StateData(state)
	targetUserPhone, _ := services.DataString(data, "targetUserPhone")
	targetUserID, err := stateUserID(data, "targetUserId")
	if err != nil {
		f.deps.Log.Error("corrupt flow state", "phone", adminPhone, "error", err)
		return f.deps.Conversations.Clear(ctx, adminPhone)
	}

	if err := f.ingestPDF(ctx, adminPhone, targetUserPhone, msg.Document.ID, targetUserID); err != nil {
		f.deps.Log.Error("error processing updated biodata PDF", "phone", adminPhone, "error", err)
		// Stay on the PDF step so the admin can retry the upload.
		return f.deps.Sender.SendText(ctx, adminPhone, pdfErrorMessage(err, "update"))
	}

	return f.deps.Conversations.Clear(ctx, adminPhone)
}

func (f *UpdateBiodataFlow) ingestPDF(ctx context.Context, adminPhone, targetUserPhone, mediaID string, targetUserID uuid.UUID) error {
	f.deps.Log.Info("downloading updated biodata PDF", "mediaId", mediaID)
	pdf, err := f.deps.Media.DownloadMedia(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if err := f.deps.Sender.SendText(ctx, adminPhone, "Processing your biodata PDF..."); err != nil {
		return err
	}

	extracted, err := f.deps.Biodata.ExtractFromPDF(ctx, pdf)
	if err != nil {
		return err
	}

	if err := f.deps.Biodata.UpdateProfile(ctx, targetUserID, extracted); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := f.deps.Sender.SendText(ctx, adminPhone,
		fmt.Sprintf("✅ Biodata updated successfully! We have saved %s %s's updated biodata.",
			extracted.FirstName, extracted.LastName)); err != nil {
		return err
	}

	if err := f.deps.Sender.SendText(ctx, targetUserPhone,
		"Your biodata has been updated successfully. Our team will review it and get back to you soon.",
	); err != nil {
		f.deps.Log.Warn("could not send notification to user", "phone", targetUserPhone, "error", err)
	}
	return nil
}
