package bot

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/claude/repbot/internal/analytics"
	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/nlp"
	"github.com/claude/repbot/internal/speech"
	"github.com/claude/repbot/internal/storage"
)

const welcomeText = `👋 Hi! I log your gym workouts from voice notes.

Start a workout, then just tell me what you did:
🎤 "Bench press, three sets of ten at eighty kilos"

I'll parse it, save it and track your records.`

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if _, err := b.db.UpsertUser(ctx, userID, msg.From.UserName); err != nil {
		b.logger.Error("upserting user", "user_id", userID, "error", err)
	}

	st, err := b.state.Get(chatID)
	if err != nil {
		b.logger.Error("loading chat state", "chat_id", chatID, "error", err)
		st = &ChatState{Step: StepIdle}
	}

	switch {
	case text == "/start":
		b.sendHTML(chatID, welcomeText, mainMenu())
		return
	case text == "/help":
		b.sendHTML(chatID, welcomeText, nil)
		return
	case text == "/cancel", text == btnMainMenu:
		b.clearState(chatID)
		b.sendHTML(chatID, "Back to the main menu.", mainMenu())
		return
	case text == "/workout", text == btnStartWorkout:
		b.startWorkoutFlow(ctx, chatID, userID)
		return
	case text == "/current", text == btnCurrentWorkout:
		b.showCurrentWorkout(ctx, chatID, userID, st)
		return
	case text == "/finish", text == btnFinishWorkout:
		b.finishWorkout(ctx, chatID, userID, st)
		return
	case text == btnCancelWorkout:
		b.cancelWorkout(ctx, chatID, userID, st)
		return
	case text == "/programs", text == btnPrograms:
		b.showPrograms(ctx, chatID, userID)
		return
	case text == "/newprogram":
		b.setState(chatID, &ChatState{Step: StepNamingProgram, WorkoutID: st.WorkoutID})
		b.send(chatID, "What should the program be called?")
		return
	case text == "/stats", text == btnStats:
		b.sendHTML(chatID, "📊 What would you like to see?", statsMenuKeyboard())
		return
	case strings.HasPrefix(text, "/exercises"):
		b.showExerciseSearch(chatID, strings.TrimSpace(strings.TrimPrefix(text, "/exercises")))
		return
	case strings.HasPrefix(text, "/units"):
		b.handleUnits(ctx, chatID, userID, strings.TrimSpace(strings.TrimPrefix(text, "/units")))
		return
	}

	switch st.Step {
	case StepNamingProgram:
		b.createProgram(ctx, chatID, userID, st, text)
	case StepAwaitingComment:
		b.attachComment(ctx, chatID, st, text)
	case StepAwaitingExerciseName:
		b.fixExerciseName(ctx, chatID, userID, st, text)
	case StepWorkoutActive, StepAwaitingConfirm:
		b.processWorkoutText(ctx, chatID, userID, st, text)
	default:
		b.sendHTML(chatID, "No active workout. Press \"🏋️ Start workout\" first, then send me what you did.", mainMenu())
	}
}

func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	st, err := b.state.Get(chatID)
	if err != nil {
		b.logger.Error("loading chat state", "chat_id", chatID, "error", err)
		return
	}
	if st.Step != StepWorkoutActive && st.Step != StepAwaitingConfirm {
		// Park the voice note without touching the rest of the state. A
		// mid-prompt chat may still carry an active workout.
		b.setState(chatID, stashVoice(st, msg.Voice.FileID))
		prompt := "No workout going yet. Start one and I'll log that voice note right away."
		label := "🏋️ Start workout"
		if st.WorkoutID != "" {
			prompt = "Got the voice note. Tap below to log it into your current workout."
			label = "▶️ Log it now"
		}
		b.sendHTML(chatID, prompt,
			tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData(label, cbStartWithVoice),
				),
			))
		return
	}

	text, ok := b.transcribeVoice(ctx, chatID, msg.Voice.FileID)
	if !ok {
		return
	}
	b.send(chatID, "🎤 Heard: "+text)
	b.processWorkoutText(ctx, chatID, userID, st, text)
}

// transcribeVoice resolves and transcribes a Telegram voice file, reporting
// failures to the chat.
func (b *Bot) transcribeVoice(ctx context.Context, chatID int64, fileID string) (string, bool) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		b.logger.Error("resolving voice file", "error", err)
		b.send(chatID, "Could not fetch that voice note, try again.")
		return "", false
	}

	text, err := b.transcriber.TranscribeURL(ctx, url)
	if err != nil {
		if errors.Is(err, speech.ErrTranscriptionUnavailable) {
			b.send(chatID, "🎤 Couldn't make that out. Try again, or type it instead.")
		} else {
			b.logger.Error("transcribing voice", "error", err)
			b.send(chatID, "Transcription is having trouble right now. Type your sets instead.")
		}
		return "", false
	}
	return text, true
}

// startWithStashedVoice logs the voice note that arrived before the chat was
// ready for it, reusing the active workout when there is one and starting a
// freestyle workout otherwise.
func (b *Bot) startWithStashedVoice(ctx context.Context, chatID, userID int64, st *ChatState) {
	if st.PendingVoice == "" {
		b.startWorkoutFlow(ctx, chatID, userID)
		return
	}

	workoutID := st.WorkoutID
	if _, err := uuid.Parse(workoutID); err != nil {
		w, err := b.db.CreateWorkout(ctx, userID, nil)
		if err != nil {
			b.logger.Error("creating workout", "error", err)
			b.send(chatID, "Couldn't start the workout, try again.")
			return
		}
		workoutID = w.ID.String()
		b.sendHTML(chatID, "🏋️ Workout started!", workoutMenu())
	}
	next := &ChatState{Step: StepWorkoutActive, WorkoutID: workoutID}
	b.setState(chatID, next)

	text, ok := b.transcribeVoice(ctx, chatID, st.PendingVoice)
	if !ok {
		return
	}
	b.send(chatID, "🎤 Heard: "+text)
	b.processWorkoutText(ctx, chatID, userID, next, text)
}

// processWorkoutText runs transcribed or typed text through the parser and
// applies the resulting action to the active workout.
func (b *Bot) processWorkoutText(ctx context.Context, chatID, userID int64, st *ChatState, text string) {
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		b.logger.Error("bad workout id in state", "chat_id", chatID, "error", err)
		b.clearState(chatID)
		b.sendHTML(chatID, "Something got out of sync, start a new workout.", mainMenu())
		return
	}

	exercises, err := b.db.ListExercises(ctx, userID)
	if err != nil {
		b.logger.Error("listing exercises", "error", err)
		b.send(chatID, "Storage is having trouble, try again in a moment.")
		return
	}

	var logged []string
	if detail, err := b.db.GetWorkout(ctx, userID, workoutID); err == nil {
		for _, we := range detail.Exercises {
			logged = append(logged, we.Name)
		}
	}

	units := "kg"
	if u, err := b.db.GetUser(ctx, userID); err == nil && u.Units != "" {
		units = u.Units
	}

	result, err := b.parser.Parse(ctx, text, exerciseNames(exercises), nlp.PromptContext{CurrentExercises: logged, Units: units})
	if err != nil {
		if errors.Is(err, nlp.ErrParseFailure) {
			b.send(chatID, "🤔 Couldn't understand that. Try something like \"bench press 3 sets of 10 at 80\".")
		} else {
			b.logger.Error("parsing message", "error", err)
			b.send(chatID, "The parsing service is unavailable right now, try again shortly.")
		}
		return
	}

	switch result.Action {
	case nlp.ActionRemoveLast:
		b.removeLastSet(ctx, chatID, workoutID)
		return
	case nlp.ActionEditLast:
		if len(result.Exercises) > 0 {
			if err := b.db.DeleteLastExercise(ctx, workoutID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				b.logger.Error("deleting last exercise", "error", err)
			}
		}
	case nlp.ActionAddComment:
		comment := result.WorkoutComment
		if comment == "" {
			comment = text
		}
		if err := b.db.SetWorkoutComment(ctx, userID, workoutID, comment); err != nil {
			b.logger.Error("setting workout comment", "error", err)
			b.send(chatID, "Couldn't save the comment, try again.")
			return
		}
		b.send(chatID, "💬 Comment saved.")
		return
	}

	if result.ClarificationNeeded && result.ClarificationQuestion != "" {
		b.send(chatID, result.ClarificationQuestion)
		return
	}
	if len(result.Exercises) == 0 {
		b.send(chatID, "❌ No exercises in that message. Try:\n• \"Treadmill 30 minutes\"\n• \"Bench press 10 at 80\"")
		return
	}

	b.resolveAndRecord(ctx, chatID, userID, st, workoutID, result, exercises)
}

// resolveAndRecord matches parsed names against stored exercises. If every
// exercise resolves confidently the whole message is recorded in one
// transaction; otherwise the parse is parked and the user is asked about
// the first uncertain name.
func (b *Bot) resolveAndRecord(ctx context.Context, chatID, userID int64, st *ChatState, workoutID uuid.UUID, result *nlp.ParseResult, exercises []models.Exercise) {
	for i, pe := range result.Exercises {
		match := nlp.MatchExercise(pe.Name, exercises)
		conf := nlp.CombineConfidence(match.Confidence, result.Confidence)
		if conf >= 0.9 {
			result.Exercises[i].Name = match.Name
			continue
		}

		raw, err := json.Marshal(result)
		if err != nil {
			b.logger.Error("stashing parse", "error", err)
			return
		}
		next := &ChatState{
			Step:          StepAwaitingConfirm,
			WorkoutID:     st.WorkoutID,
			PendingParse:  raw,
			PendingIdx:    i,
			ParseAttempts: st.ParseAttempts + 1,
		}
		b.setState(chatID, next)

		alternatives := match.Alternatives
		if len(alternatives) == 0 {
			alternatives = result.Alternatives
		}
		if conf >= 0.6 && len(alternatives) > 0 && next.ParseAttempts <= 2 {
			ids := alternativeIDs(alternatives, exercises)
			b.sendHTML(chatID, "🤔 Not sure about <b>"+pe.Name+"</b>. Did you mean:",
				alternativesKeyboard(alternatives, ids))
			return
		}
		b.sendHTML(chatID, "I don't know <b>"+pe.Name+"</b> yet. Add it as a new exercise?",
			tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("✅ Yes, add it", cbCreateExercise),
					tgbotapi.NewInlineKeyboardButtonData("❌ No", cbCancelAction),
				),
			))
		return
	}

	b.recordParse(ctx, chatID, userID, workoutID, result)
}

// recordParse persists a fully resolved parse atomically and confirms.
func (b *Bot) recordParse(ctx context.Context, chatID, userID int64, workoutID uuid.UUID, result *nlp.ParseResult) {
	var sets []models.NewSet
	for _, pe := range result.Exercises {
		for _, s := range pe.Sets {
			sets = append(sets, models.NewSet{
				ExerciseName: pe.Name,
				Reps:         s.Reps,
				WeightKg:     s.WeightKg,
				Comment:      s.Comment,
			})
		}
	}

	if err := b.db.AddSets(ctx, userID, workoutID, sets); err != nil {
		b.logger.Error("adding sets", "error", err)
		b.send(chatID, "Couldn't save that, nothing was recorded. Try again.")
		return
	}
	if result.WorkoutComment != "" {
		if err := b.db.SetWorkoutComment(ctx, userID, workoutID, result.WorkoutComment); err != nil {
			b.logger.Error("setting workout comment", "error", err)
		}
	}

	b.setState(chatID, &ChatState{Step: StepWorkoutActive, WorkoutID: workoutID.String()})
	b.sendHTML(chatID, "✅ "+formatLoggedExercises(result.Exercises), confirmExerciseKeyboard())
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID, ok := callbackChatID(cq)
	if !ok {
		b.answerCallback(cq.ID, "That button has expired.")
		return
	}
	userID := cq.From.ID
	data := cq.Data

	st, err := b.state.Get(chatID)
	if err != nil {
		b.logger.Error("loading chat state", "chat_id", chatID, "error", err)
		b.answerCallback(cq.ID, "")
		return
	}

	switch {
	case data == cbConfirmExercise:
		b.answerCallback(cq.ID, "Saved 💪")
	case data == cbEditLast:
		b.answerCallback(cq.ID, "")
		b.setState(chatID, &ChatState{Step: StepAwaitingExerciseName, WorkoutID: st.WorkoutID})
		b.send(chatID, "What is the exercise actually called?")
	case data == cbDeleteLast:
		b.answerCallback(cq.ID, "")
		b.deleteLastExercise(ctx, chatID, st)
	case data == cbAddComment:
		b.answerCallback(cq.ID, "")
		b.setState(chatID, &ChatState{Step: StepAwaitingComment, WorkoutID: st.WorkoutID})
		b.send(chatID, "What comment should I attach to that exercise?")
	case data == cbFinishWorkout:
		b.answerCallback(cq.ID, "")
		b.finishWorkout(ctx, chatID, userID, st)
	case data == cbCancelWorkout:
		b.answerCallback(cq.ID, "")
		b.cancelWorkout(ctx, chatID, userID, st)
	case data == cbCancelAction:
		b.answerCallback(cq.ID, "Dropped")
		b.setState(chatID, &ChatState{Step: StepWorkoutActive, WorkoutID: st.WorkoutID})
		b.send(chatID, "Okay, dropped that one. Keep going!")
	case data == cbCreateExercise:
		b.answerCallback(cq.ID, "")
		b.resolvePendingAsNew(ctx, chatID, userID, st)
	case data == cbStartWithVoice:
		b.answerCallback(cq.ID, "")
		b.startWithStashedVoice(ctx, chatID, userID, st)
	case data == cbProgramFree:
		b.answerCallback(cq.ID, "")
		b.beginWorkout(ctx, chatID, userID, nil)
	case data == cbProgramNew:
		b.answerCallback(cq.ID, "")
		b.setState(chatID, &ChatState{Step: StepNamingProgram, WorkoutID: st.WorkoutID})
		b.send(chatID, "What should the program be called?")
	case strings.HasPrefix(data, cbProgramDelete):
		b.answerCallback(cq.ID, "")
		b.deleteProgram(ctx, chatID, userID, strings.TrimPrefix(data, cbProgramDelete))
	case strings.HasPrefix(data, cbProgramPrefix):
		b.answerCallback(cq.ID, "")
		if id, err := strconv.Atoi(strings.TrimPrefix(data, cbProgramPrefix)); err == nil {
			b.beginWorkout(ctx, chatID, userID, &id)
		}
	case strings.HasPrefix(data, cbProgressPrefix):
		b.answerCallback(cq.ID, "")
		if id, err := strconv.Atoi(strings.TrimPrefix(data, cbProgressPrefix)); err == nil {
			b.showProgress(ctx, chatID, userID, id)
		}
	case strings.HasPrefix(data, cbExercisePrefix):
		b.answerCallback(cq.ID, "")
		if id, err := strconv.Atoi(strings.TrimPrefix(data, cbExercisePrefix)); err == nil {
			b.resolvePendingWith(ctx, chatID, userID, st, id)
		}
	case strings.HasPrefix(data, cbStatsPrefix):
		b.answerCallback(cq.ID, "")
		b.showStats(ctx, chatID, userID, strings.TrimPrefix(data, cbStatsPrefix))
	default:
		b.logger.Warn("unrecognized callback", "data", data)
		b.answerCallback(cq.ID, "")
	}
}

// resolvePendingWith replaces the uncertain exercise name with the chosen
// one and re-runs recording.
func (b *Bot) resolvePendingWith(ctx context.Context, chatID, userID int64, st *ChatState, exerciseID int) {
	result, workoutID, ok := b.loadPending(chatID, st)
	if !ok {
		return
	}
	chosen, err := b.db.GetExercise(ctx, exerciseID)
	if err != nil {
		b.logger.Error("loading chosen exercise", "error", err)
		b.send(chatID, "Couldn't load that exercise, try again.")
		return
	}
	result.Exercises[st.PendingIdx].Name = chosen.Name

	exercises, err := b.db.ListExercises(ctx, userID)
	if err != nil {
		b.logger.Error("listing exercises", "error", err)
		return
	}
	b.resolveAndRecord(ctx, chatID, userID, st, workoutID, result, exercises)
}

// resolvePendingAsNew creates a custom exercise from the uncertain name and
// re-runs recording.
func (b *Bot) resolvePendingAsNew(ctx context.Context, chatID, userID int64, st *ChatState) {
	result, workoutID, ok := b.loadPending(chatID, st)
	if !ok {
		return
	}
	name := result.Exercises[st.PendingIdx].Name
	created, err := b.db.CreateCustomExercise(ctx, userID, name)
	if err != nil {
		b.logger.Error("creating custom exercise", "error", err)
		b.send(chatID, "Couldn't create the exercise, try again.")
		return
	}
	result.Exercises[st.PendingIdx].Name = created.Name

	exercises, err := b.db.ListExercises(ctx, userID)
	if err != nil {
		b.logger.Error("listing exercises", "error", err)
		return
	}
	b.send(chatID, "➕ Added "+created.Name+" to your exercises.")
	b.resolveAndRecord(ctx, chatID, userID, st, workoutID, result, exercises)
}

func (b *Bot) loadPending(chatID int64, st *ChatState) (*nlp.ParseResult, uuid.UUID, bool) {
	if len(st.PendingParse) == 0 {
		b.send(chatID, "Nothing pending here anymore.")
		return nil, uuid.Nil, false
	}
	var result nlp.ParseResult
	if err := json.Unmarshal(st.PendingParse, &result); err != nil {
		b.logger.Error("decoding pending parse", "error", err)
		return nil, uuid.Nil, false
	}
	if st.PendingIdx >= len(result.Exercises) {
		b.logger.Error("pending index out of range", "idx", st.PendingIdx)
		return nil, uuid.Nil, false
	}
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		b.logger.Error("bad workout id in state", "error", err)
		return nil, uuid.Nil, false
	}
	return &result, workoutID, true
}

// --- workout lifecycle ---

func (b *Bot) startWorkoutFlow(ctx context.Context, chatID, userID int64) {
	if _, err := b.db.GetActiveWorkout(ctx, userID); err == nil {
		st, _ := b.state.Get(chatID)
		if st != nil && st.Step != StepIdle {
			b.sendHTML(chatID, "You already have a workout going. Finish or cancel it first.", workoutMenu())
			return
		}
	}

	programs, err := b.db.ListPrograms(ctx, userID)
	if err != nil {
		b.logger.Error("listing programs", "error", err)
		b.send(chatID, "Storage is having trouble, try again in a moment.")
		return
	}
	if len(programs) == 0 {
		b.beginWorkout(ctx, chatID, userID, nil)
		return
	}
	b.sendHTML(chatID, "Pick a program, or go freestyle:", programSelectionKeyboard(programs))
}

func (b *Bot) beginWorkout(ctx context.Context, chatID, userID int64, programID *int) {
	title := "🏋️ Workout started!"
	if programID != nil {
		if p, err := b.db.GetProgram(ctx, userID, *programID); err == nil {
			title = "🏋️ Workout started on <b>" + p.Name + "</b>!"
		}
	}
	w, err := b.db.CreateWorkout(ctx, userID, programID)
	if err != nil {
		b.logger.Error("creating workout", "error", err)
		b.send(chatID, "Couldn't start the workout, try again.")
		return
	}
	b.setState(chatID, &ChatState{Step: StepWorkoutActive, WorkoutID: w.ID.String()})
	b.sendHTML(chatID, title+" Tell me what you do, by voice or text.", workoutMenu())
}

func (b *Bot) showCurrentWorkout(ctx context.Context, chatID, userID int64, st *ChatState) {
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		b.sendHTML(chatID, "No active workout.", mainMenu())
		return
	}
	detail, err := b.db.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		b.logger.Error("loading workout", "error", err)
		b.send(chatID, "Couldn't load the workout.")
		return
	}
	b.sendHTML(chatID, formatWorkoutDetail(detail), nil)
}

func (b *Bot) finishWorkout(ctx context.Context, chatID, userID int64, st *ChatState) {
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		b.sendHTML(chatID, "No active workout to finish.", mainMenu())
		return
	}

	total, err := b.db.FinishWorkout(ctx, userID, workoutID)
	if err != nil {
		b.logger.Error("finishing workout", "error", err)
		b.send(chatID, "Couldn't finish the workout, try again.")
		return
	}
	records, err := b.db.CheckAndSaveRecords(ctx, userID, workoutID)
	if err != nil {
		b.logger.Error("checking records", "error", err)
	}
	detail, err := b.db.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		b.logger.Error("loading finished workout", "error", err)
		b.clearState(chatID)
		b.sendHTML(chatID, "🏁 Workout finished!", mainMenu())
		return
	}

	b.clearState(chatID)
	b.sendHTML(chatID, formatFinish(detail, total, records, analytics.Motivation(userID+int64(len(detail.Exercises)))), mainMenu())
}

func (b *Bot) cancelWorkout(ctx context.Context, chatID, userID int64, st *ChatState) {
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		b.sendHTML(chatID, "No active workout to cancel.", mainMenu())
		return
	}
	if err := b.db.DeleteWorkout(ctx, userID, workoutID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		b.logger.Error("deleting workout", "error", err)
		b.send(chatID, "Couldn't cancel the workout.")
		return
	}
	b.clearState(chatID)
	b.sendHTML(chatID, "❌ Workout canceled, nothing saved.", mainMenu())
}

func (b *Bot) removeLastSet(ctx context.Context, chatID int64, workoutID uuid.UUID) {
	if err := b.db.RemoveLastSet(ctx, workoutID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.send(chatID, "Nothing to remove yet.")
		} else {
			b.logger.Error("removing last set", "error", err)
			b.send(chatID, "Couldn't remove it, try again.")
		}
		return
	}
	b.send(chatID, "↩️ Removed the last set.")
}

func (b *Bot) deleteLastExercise(ctx context.Context, chatID int64, st *ChatState) {
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		return
	}
	if err := b.db.DeleteLastExercise(ctx, workoutID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.send(chatID, "Nothing to delete.")
		} else {
			b.logger.Error("deleting last exercise", "error", err)
			b.send(chatID, "Couldn't delete it, try again.")
		}
		return
	}
	b.send(chatID, "🗑 Deleted the last exercise.")
}

func (b *Bot) attachComment(ctx context.Context, chatID int64, st *ChatState, text string) {
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		b.clearState(chatID)
		return
	}
	if err := b.db.SetExerciseComment(ctx, workoutID, text); err != nil {
		b.logger.Error("setting exercise comment", "error", err)
		b.send(chatID, "Couldn't save the comment.")
		return
	}
	b.setState(chatID, &ChatState{Step: StepWorkoutActive, WorkoutID: st.WorkoutID})
	b.send(chatID, "💬 Comment saved.")
}

// fixExerciseName renames the last logged exercise to what the user typed,
// matching against known exercises first and creating a custom one when
// nothing fits.
func (b *Bot) fixExerciseName(ctx context.Context, chatID, userID int64, st *ChatState, name string) {
	workoutID, err := uuid.Parse(st.WorkoutID)
	if err != nil {
		b.clearState(chatID)
		b.sendHTML(chatID, "No active workout.", mainMenu())
		return
	}
	exercises, err := b.db.ListExercises(ctx, userID)
	if err != nil {
		b.logger.Error("listing exercises", "error", err)
		b.send(chatID, "Storage is having trouble, try again in a moment.")
		return
	}

	match := nlp.MatchExercise(name, exercises)
	var exerciseID int
	finalName := match.Name
	if match.ExerciseID != nil && match.Confidence >= 0.8 {
		exerciseID = *match.ExerciseID
	} else {
		created, err := b.db.CreateCustomExercise(ctx, userID, name)
		if err != nil {
			b.logger.Error("creating custom exercise", "error", err)
			b.send(chatID, "Couldn't create the exercise, try again.")
			return
		}
		exerciseID = created.ID
		finalName = created.Name
	}

	b.setState(chatID, &ChatState{Step: StepWorkoutActive, WorkoutID: st.WorkoutID})
	if err := b.db.ReassignLastExercise(ctx, workoutID, exerciseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.send(chatID, "Nothing logged yet to rename.")
		} else {
			b.logger.Error("reassigning last exercise", "error", err)
			b.send(chatID, "Couldn't rename it, try again.")
		}
		return
	}
	b.sendHTML(chatID, "✏️ Renamed to <b>"+finalName+"</b>.", nil)
}

// --- programs ---

func (b *Bot) showPrograms(ctx context.Context, chatID, userID int64) {
	programs, err := b.db.ListPrograms(ctx, userID)
	if err != nil {
		b.logger.Error("listing programs", "error", err)
		b.send(chatID, "Couldn't load your programs.")
		return
	}
	if len(programs) == 0 {
		b.sendHTML(chatID, "📋 No programs yet. Use /newprogram to create one.", nil)
		return
	}
	b.sendHTML(chatID, "📋 <b>Your programs</b> (tap to delete):", programListKeyboard(programs))
}

func (b *Bot) createProgram(ctx context.Context, chatID, userID int64, st *ChatState, name string) {
	if name == "" || len(name) > 64 {
		b.send(chatID, "Give the program a name up to 64 characters.")
		return
	}
	p, err := b.db.CreateProgram(ctx, userID, name, nil)
	if err != nil {
		b.logger.Error("creating program", "error", err)
		b.send(chatID, "Couldn't create the program, try again.")
		return
	}
	step := StepIdle
	if st.WorkoutID != "" {
		step = StepWorkoutActive
	}
	b.setState(chatID, &ChatState{Step: step, WorkoutID: st.WorkoutID})
	b.sendHTML(chatID, "✅ Program <b>"+p.Name+"</b> created. It will show up when you start a workout.", nil)
}

func (b *Bot) deleteProgram(ctx context.Context, chatID, userID int64, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return
	}
	if err := b.db.DeleteProgram(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.send(chatID, "That program is already gone.")
		} else {
			b.logger.Error("deleting program", "error", err)
			b.send(chatID, "Couldn't delete the program.")
		}
		return
	}
	b.send(chatID, "🗑 Program deleted. Past workouts keep their history.")
}

// showExerciseSearch looks a query up in the built-in catalog so users can
// find the names the parser knows.
func (b *Bot) showExerciseSearch(chatID int64, query string) {
	if query == "" {
		b.send(chatID, "Usage: /exercises <name>, e.g. /exercises bench")
		return
	}
	matches := b.catalog.Search(query, 10)
	if len(matches) == 0 {
		b.sendHTML(chatID, "Nothing matches <b>"+query+"</b>. You can still log it and I'll offer to add it as a custom exercise.", nil)
		return
	}
	var sb strings.Builder
	sb.WriteString("🔎 <b>Exercises matching \"" + query + "\"</b>\n")
	for _, m := range matches {
		sb.WriteString("• " + m.Name)
		if len(m.MuscleGroups) > 0 {
			sb.WriteString(" <i>(" + strings.Join(m.MuscleGroups, ", ") + ")</i>")
		}
		sb.WriteString("\n")
	}
	b.sendHTML(chatID, sb.String(), nil)
}

// handleUnits shows or changes the unit new weights are assumed to be in
// when a message does not name one.
func (b *Bot) handleUnits(ctx context.Context, chatID, userID int64, arg string) {
	switch strings.ToLower(arg) {
	case "":
		u, err := b.db.GetUser(ctx, userID)
		if err != nil {
			b.logger.Error("loading user", "error", err)
			b.send(chatID, "Couldn't load your settings, try again.")
			return
		}
		b.send(chatID, "Weights without a unit count as "+u.Units+". Use /units kg or /units lb to change.")
	case "kg", "lb":
		units := strings.ToLower(arg)
		if err := b.db.SetUserUnits(ctx, userID, units); err != nil {
			b.logger.Error("updating units", "error", err)
			b.send(chatID, "Couldn't update units, try again.")
			return
		}
		b.send(chatID, "✅ Weights without a unit now count as "+units+".")
	default:
		b.send(chatID, "Usage: /units kg or /units lb")
	}
}

// --- statistics ---

func (b *Bot) showStats(ctx context.Context, chatID, userID int64, period string) {
	now := time.Now()
	switch period {
	case "today":
		s, err := b.db.GetRangeSummary(ctx, userID, dayStart(now), dayStart(now).AddDate(0, 0, 1))
		if err != nil {
			b.statsError(chatID, err)
			return
		}
		b.sendHTML(chatID, formatRangeSummary("📅 <b>Today</b>", s), nil)
	case "week":
		start := weekStart(now)
		elapsed := now.Sub(start)
		cur, err := b.db.GetRangeSummary(ctx, userID, start, now.AddDate(0, 0, 1))
		if err != nil {
			b.statsError(chatID, err)
			return
		}
		prevStart := start.AddDate(0, 0, -7)
		prev, err := b.db.GetRangeSummary(ctx, userID, prevStart, prevStart.Add(elapsed).AddDate(0, 0, 1))
		if err != nil {
			b.statsError(chatID, err)
			return
		}
		b.sendHTML(chatID, formatWeekComparison(cur, prev), nil)
	case "month":
		s, err := b.db.GetRangeSummary(ctx, userID, monthStart(now), monthStart(now).AddDate(0, 1, 0))
		if err != nil {
			b.statsError(chatID, err)
			return
		}
		b.sendHTML(chatID, formatRangeSummary("📊 <b>This month</b>", s), nil)
	case "records":
		records, err := b.db.ListRecords(ctx, userID)
		if err != nil {
			b.statsError(chatID, err)
			return
		}
		b.sendHTML(chatID, formatRecords(records), nil)
	case "progress":
		s, err := b.db.GetRangeSummary(ctx, userID, now.AddDate(0, -3, 0), now.AddDate(0, 0, 1))
		if err != nil {
			b.statsError(chatID, err)
			return
		}
		var used []models.Exercise
		for _, t := range s.Exercises {
			if e, err := b.db.GetExerciseByName(ctx, t.Name); err == nil {
				used = append(used, *e)
			}
		}
		if len(used) == 0 {
			b.send(chatID, "📈 Log some workouts first, then I can chart progress.")
			return
		}
		b.sendHTML(chatID, "📈 Which exercise?", progressExercisesKeyboard(used))
	}
}

func (b *Bot) showProgress(ctx context.Context, chatID, userID int64, exerciseID int) {
	e, err := b.db.GetExercise(ctx, exerciseID)
	if err != nil {
		b.statsError(chatID, err)
		return
	}
	points, err := b.db.GetExerciseHistory(ctx, userID, exerciseID, 10)
	if err != nil {
		b.statsError(chatID, err)
		return
	}
	b.sendHTML(chatID, formatProgress(e.Name, points), nil)
}

func (b *Bot) statsError(chatID int64, err error) {
	b.logger.Error("loading stats", "error", err)
	b.send(chatID, "Couldn't load statistics, try again in a moment.")
}

// --- helpers ---

// stashVoice parks a voice file on the state without losing an in-flight
// prompt or the active workout reference.
func stashVoice(st *ChatState, fileID string) *ChatState {
	st.PendingVoice = fileID
	return st
}

// callbackChatID extracts the originating chat of a callback. Telegram omits
// the message on callbacks for messages older than 48 hours.
func callbackChatID(cq *tgbotapi.CallbackQuery) (int64, bool) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return 0, false
	}
	return cq.Message.Chat.ID, true
}

func (b *Bot) setState(chatID int64, st *ChatState) {
	if err := b.state.Set(chatID, st); err != nil {
		b.logger.Error("saving chat state", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) clearState(chatID int64) {
	if err := b.state.Clear(chatID); err != nil {
		b.logger.Error("clearing chat state", "chat_id", chatID, "error", err)
	}
}

func exerciseNames(exercises []models.Exercise) []string {
	names := make([]string, len(exercises))
	for i, e := range exercises {
		names[i] = e.Name
	}
	return names
}

// alternativeIDs resolves alternative names back to exercise IDs for
// callback data. Names that no longer resolve are skipped by the keyboard.
func alternativeIDs(alternatives []nlp.Alternative, exercises []models.Exercise) []int {
	byName := make(map[string]int, len(exercises))
	for _, e := range exercises {
		byName[strings.ToLower(e.Name)] = e.ID
	}
	ids := make([]int, len(alternatives))
	for i, a := range alternatives {
		ids[i] = byName[strings.ToLower(a.Name)]
	}
	return ids
}
