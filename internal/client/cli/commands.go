package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/voicetasker/voicetasker/internal/client/models"
	"github.com/voicetasker/voicetasker/internal/client/recorder"
	"github.com/voicetasker/voicetasker/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) getStatus() string {
	status, _ := a.sync.Status()
	s := status.String()
	if a.recorder.State() != recorder.StateIdle {
		s = s + " " + a.recorder.State().String()
	}
	if a.admin {
		s = s + " admin"
	}
	return s
}

func (a *App) reportVisit(ctx context.Context) {
	visit := &models.Visit{
		GuestID:   a.ownerID,
		UserAgent: cliUserAgent,
		Locale:    os.Getenv("LANG"),
		Timezone:  time.Now().Location().String(),
	}
	if err := a.client.ReportVisit(ctx, visit); err != nil {
		log.Printf("error reporting visit: %s", err.Error())
	}
}

// Record starts capturing audio from the configured source.
func (a *App) Record(ctx context.Context) error {
	if err := a.recorder.Start(ctx); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	fmt.Println("Recording... type 'stop' to finish")
	return nil
}

// StopRecording ends the capture, sends the audio for transcription, and
// saves the transcribed text as a new log entry.
func (a *App) StopRecording(ctx context.Context) error {
	uri, err := a.recorder.Stop(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	defer a.recorder.Finish()

	text, audioKey, err := a.client.Transcribe(ctx, uri)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if err := a.sync.Create(ctx, text, audioKey); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Saved: %s\n", text)
	return nil
}

// List prints the current log entries, newest first, with selection marks.
func (a *App) List(ctx context.Context) error {
	entries := a.sync.Entries()
	if len(entries) == 0 {
		fmt.Println("No log entries")
		return nil
	}

	selected := make(map[string]bool)
	for _, id := range a.sync.Selected() {
		selected[id] = true
	}

	for i, e := range entries {
		mark := " "
		if selected[e.ID] {
			mark = "*"
		}
		fmt.Printf("%s %3d. [%s] %s\n", mark, i+1, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Text)
	}
	return nil
}

// entryID resolves a 1-based list position to the entry id.
func (a *App) entryID(arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "", fmt.Errorf("not a number: %s", arg)
	}
	entries := a.sync.Entries()
	if n < 1 || n > len(entries) {
		return "", fmt.Errorf("no entry %d", n)
	}
	return entries[n-1].ID, nil
}

func (a *App) Select(ctx context.Context, arg string) error {
	id, err := a.entryID(arg)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	a.sync.ToggleSelect(id)
	return nil
}

func (a *App) Unselect(ctx context.Context, arg string) error {
	return a.Select(ctx, arg)
}

func (a *App) SelectAll(ctx context.Context) error {
	a.sync.SelectAll()
	return nil
}

func (a *App) UnselectAll(ctx context.Context) error {
	a.sync.DeselectAll()
	return nil
}

func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := a.entryID(arg)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	if err := a.sync.DeleteOne(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	return nil
}

func (a *App) DeleteSelected(ctx context.Context) error {
	n, err := a.sync.DeleteSelected(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	fmt.Printf("Deleted %d entries\n", n)
	return nil
}

// Status prints the feed state, recorder state, and owner identity.
func (a *App) Status(ctx context.Context) error {
	status, statusErr := a.sync.Status()
	fmt.Printf("Feed: %s", status)
	if statusErr != nil {
		fmt.Printf(" (%s)", statusErr.Error())
	}
	fmt.Println()
	fmt.Printf("Recorder: %s (permission %s)\n", a.recorder.State(), a.recorder.Permission())
	fmt.Printf("Owner: %s\n", a.ownerID)
	return nil
}

// AdminLogin prompts for administrator credentials and authenticates.
func (a *App) AdminLogin(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter admin username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.AdminLogin(ctx, userName, string(password)); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	a.admin = true
	fmt.Println("Success!")
	return nil
}

// AdminList prints every owner's log entries.
func (a *App) AdminList(ctx context.Context) error {
	groups, owners, err := a.client.AdminLogs(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if len(owners) == 0 {
		fmt.Println("No log entries")
		return nil
	}

	for _, owner := range owners {
		fmt.Printf("Owner %s:\n", owner)
		for _, e := range groups[owner] {
			audio := ""
			if e.AudioKey != "" {
				audio = " [audio]"
			}
			fmt.Printf("  [%s] %s%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Text, audio)
		}
	}
	return nil
}
