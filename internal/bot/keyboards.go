package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/nlp"
)

// Persistent reply-keyboard labels. Handlers dispatch on these alongside
// the slash commands.
const (
	btnStartWorkout   = "🏋️ Start workout"
	btnCurrentWorkout = "📊 Current workout"
	btnPrograms       = "📋 My programs"
	btnStats          = "📊 Statistics"
	btnFinishWorkout  = "🏁 Finish workout"
	btnCancelWorkout  = "❌ Cancel workout"
	btnMainMenu       = "◀️ Main menu"
)

// Callback data values and prefixes.
const (
	cbConfirmExercise = "confirm_exercise"
	cbEditLast        = "edit_last_exercise"
	cbDeleteLast      = "delete_last_exercise"
	cbAddComment      = "add_comment"
	cbFinishWorkout   = "finish_workout"
	cbCancelWorkout   = "cancel_workout"
	cbStartWithVoice  = "workout:start_voice"
	cbCreateExercise  = "exercise:new"
	cbCancelAction    = "action:cancel"
	cbProgramPrefix   = "program:"
	cbProgramFree     = "program:freestyle"
	cbProgramNew      = "program:new"
	cbProgramDelete   = "program_delete:"
	cbExercisePrefix  = "exercise:"
	cbStatsPrefix     = "stats:"
	cbProgressPrefix  = "progress:"
)

// mainMenu is the persistent keyboard shown outside a workout.
func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStartWorkout),
			tgbotapi.NewKeyboardButton(btnCurrentWorkout),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPrograms),
			tgbotapi.NewKeyboardButton(btnStats),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// workoutMenu is the persistent keyboard shown during a workout.
func workoutMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCurrentWorkout),
			tgbotapi.NewKeyboardButton(btnFinishWorkout),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelWorkout),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMainMenu),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// confirmExerciseKeyboard follows a freshly logged exercise.
func confirmExerciseKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Correct", cbConfirmExercise),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Fix name", cbEditLast),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Delete", cbDeleteLast),
			tgbotapi.NewInlineKeyboardButtonData("💬 Comment", cbAddComment),
		),
	)
}

// alternativesKeyboard offers candidate exercise names when the parse was
// uncertain, plus creating a brand new one.
func alternativesKeyboard(alternatives []nlp.Alternative, exerciseIDs []int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, alt := range alternatives {
		if i >= len(exerciseIDs) || exerciseIDs[i] == 0 {
			continue
		}
		label := alt.Name
		if len(label) > 40 {
			label = label[:37] + "…"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbExercisePrefix+strconv.Itoa(exerciseIDs[i])),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Create new exercise", cbCreateExercise),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbCancelAction),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// programSelectionKeyboard lists programs two per row, with freestyle and
// create-new options at the bottom.
func programSelectionKeyboard(programs []models.Program) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, p := range programs {
		label := p.Name
		if len(label) > 32 {
			label = label[:32]
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbProgramPrefix+strconv.Itoa(p.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎯 Freestyle (no program)", cbProgramFree),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Create a new program", cbProgramNew),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// programListKeyboard shows each program with a delete button.
func programListKeyboard(programs []models.Program) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range programs {
		label := p.Name
		if len(label) > 32 {
			label = label[:32]
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+label, cbProgramDelete+strconv.Itoa(p.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Create a new program", cbProgramNew),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// statsMenuKeyboard is the statistics submenu.
func statsMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", cbStatsPrefix+"today"),
			tgbotapi.NewInlineKeyboardButtonData("📆 This week", cbStatsPrefix+"week"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 This month", cbStatsPrefix+"month"),
			tgbotapi.NewInlineKeyboardButtonData("🏆 Records", cbStatsPrefix+"records"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Exercise progress", cbStatsPrefix+"progress"),
		),
	)
}

// progressExercisesKeyboard lists exercises to chart progress for.
func progressExercisesKeyboard(exercises []models.Exercise) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, e := range exercises {
		if i >= 10 {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(e.Name, fmt.Sprintf("%s%d", cbProgressPrefix, e.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
