package flows

import (
	"context"
	"fmt"

	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/utils"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

// RemoveUserFlow is the admin flow that deletes a member account, with all
// its biodata and preferences, by phone number. Admin accounts are protected.
type RemoveUserFlow struct {
	deps Deps
}

func (f *RemoveUserFlow) Initialize(ctx context.Context, adminPhone string) error {
	if err := f.deps.Conversations.StartFlow(ctx, adminPhone, types.FlowRemoveUser, nil); err != nil {
		return err
	}
	if err := f.deps.Sender.SendText(ctx, adminPhone,
		"Please provide the WhatsApp number of the user whose biodata you want to remove (include country code, e.g., 917779088399)",
	); err != nil {
		return err
	}
	return f.deps.Conversations.Advance(ctx, adminPhone, types.StepAwaitingPhone, nil)
}

func (f *RemoveUserFlow) Handle(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	if state.Step == types.StepAwaitingPhone {
		return f.handlePhoneInput(ctx, state.Phone, msg)
	}
	return nil
}

func (f *RemoveUserFlow) handlePhoneInput(ctx context.Context, adminPhone string, msg *wa.Message) error {
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
			fmt.Sprintf("❌ User with phone number %s does not exist in the database. Please provide a valid phone number.", phone))
	}

	if user.IsAdmin {
		if err := f.deps.Sender.SendText(ctx, adminPhone,
			fmt.Sprintf("❌ Cannot remove admin user %s. Admin accounts must be managed separately.", phone)); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, adminPhone)
	}

	if err := f.deps.Users.DeleteUser(ctx, phone); err != nil {
		return err
	}
	f.deps.Log.Info("deleted user", "phone", phone)

	if err := f.deps.Sender.SendText(ctx, phone,
		"Your account and biodata have been removed from our system. Thank you for using our service.",
	); err != nil {
		f.deps.Log.Warn("could not send notification to removed user", "phone", phone, "error", err)
		if err := f.deps.Sender.SendText(ctx, adminPhone,
			fmt.Sprintf("✅ User removed successfully!\n\nUser: %s\nAccount: Deleted\n\n⚠️ Note: Notification could not be sent to user (not in test recipient list).", phone)); err != nil {
			return err
		}
	} else if err := f.deps.Sender.SendText(ctx, adminPhone,
		fmt.Sprintf("✅ User removed successfully!\n\nUser: %s\nAccount: Deleted\nNotification: Sent to user", phone)); err != nil {
		return err
	}

	return f.deps.Conversations.Clear(ctx, adminPhone)
}
