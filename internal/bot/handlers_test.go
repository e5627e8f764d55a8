package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TestCallbackChatID verifies callbacks without a message, as Telegram sends
// for messages older than 48 hours, are rejected instead of dereferenced.
func TestCallbackChatID(t *testing.T) {
	if _, ok := callbackChatID(&tgbotapi.CallbackQuery{}); ok {
		t.Error("callbackChatID(no message) ok = true, want false")
	}

	cq := &tgbotapi.CallbackQuery{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 777}},
	}
	id, ok := callbackChatID(cq)
	if !ok {
		t.Fatal("callbackChatID() ok = false, want true")
	}
	if id != 777 {
		t.Errorf("callbackChatID() = %d, want 777", id)
	}
}

// TestConfirmExerciseKeyboard verifies the post-log keyboard offers all four
// follow-up actions, including renaming a misrecognized exercise.
func TestConfirmExerciseKeyboard(t *testing.T) {
	want := map[string]bool{
		cbConfirmExercise: false,
		cbEditLast:        false,
		cbDeleteLast:      false,
		cbAddComment:      false,
	}

	for _, row := range confirmExerciseKeyboard().InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				want[*btn.CallbackData] = true
			}
		}
	}
	for data, found := range want {
		if !found {
			t.Errorf("keyboard missing button with callback %q", data)
		}
	}
}
