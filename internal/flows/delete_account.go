package flows

import (
	"context"
	"strings"

	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

const deleteConfirmMessage = `⚠️ *Delete Account Confirmation*

Are you sure you want to delete your account?

This action will:
❌ Delete your biodata
❌ Delete your preferences
❌ Remove all your information from our system

This action CANNOT be undone.

Please reply with:
✅ "YES DELETE" to confirm deletion
❌ "CANCEL" to keep your account`

const deleteDoneMessage = `✅ Your account has been successfully deleted.

All your information has been removed from our system.

Thank you for using our matchmaking service. We wish you all the best in your journey! 💫

If you wish to join again in the future, please contact our admin.`

// DeleteAccountFlow lets a member remove their own account after typing the
// exact confirmation phrase. Admin accounts refuse self-deletion.
type DeleteAccountFlow struct {
	deps Deps
}

func (f *DeleteAccountFlow) Initialize(ctx context.Context, userPhone string) error {
	if err := f.deps.Sender.SendText(ctx, userPhone, deleteConfirmMessage); err != nil {
		return err
	}
	if err := f.deps.Conversations.StartFlow(ctx, userPhone, types.FlowDeleteAccount, nil); err != nil {
		return err
	}
	return f.deps.Conversations.Advance(ctx, userPhone, types.StepAwaitingConfirmation, nil)
}

func (f *DeleteAccountFlow) Handle(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	if state.Step == types.StepAwaitingConfirmation {
		return f.handleConfirmation(ctx, state.Phone, msg)
	}
	return nil
}

func (f *DeleteAccountFlow) handleConfirmation(ctx context.Context, userPhone string, msg *wa.Message) error {
	text, ok := msg.TextBody()
	if !ok {
		return f.deps.Sender.SendText(ctx, userPhone,
			`Please reply with "YES DELETE" to confirm or "CANCEL" to keep your account.`)
	}

	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "YES DELETE":
		return f.confirmDelete(ctx, userPhone)
	case "CANCEL":
		if err := f.deps.Sender.SendText(ctx, userPhone,
			"✅ Account deletion cancelled. Your account is safe!"); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	default:
		return f.deps.Sender.SendText(ctx, userPhone,
			"⚠️ Invalid response.\n\nPlease reply with \"YES DELETE\" to confirm deletion or \"CANCEL\" to keep your account.")
	}
}

func (f *DeleteAccountFlow) confirmDelete(ctx context.Context, userPhone string) error {
	user, err := f.deps.Users.GetUserByPhone(ctx, userPhone)
	if err != nil {
		return err
	}
	if user == nil {
		if err := f.deps.Sender.SendText(ctx, userPhone, "Error: User not found."); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}

	if user.IsAdmin {
		if err := f.deps.Sender.SendText(ctx, userPhone,
			"❌ Admin accounts cannot be deleted through this method. Please contact system administrator."); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}

	if err := f.deps.Users.DeleteUser(ctx, userPhone); err != nil {
		f.deps.Log.Error("error deleting account", "phone", userPhone, "error", err)
		if err := f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error deleting your account. Please contact support."); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}
	f.deps.Log.Info("user account deleted", "phone", userPhone)

	if err := f.deps.Sender.SendText(ctx, userPhone, deleteDoneMessage); err != nil {
		return err
	}
	return f.deps.Conversations.Clear(ctx, userPhone)
}
