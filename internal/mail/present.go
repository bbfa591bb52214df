package mail

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	gomail "github.com/wneessen/go-mail"
)

// Present materializes the draft as an unsent .eml file next to the
// report and opens it with the desktop mail client, which shows it in
// compose mode for review. The .eml path is returned; on error the
// caller must retain both the .eml and the attachment.
func Present(draft *Draft, dir string) (string, error) {
	msg, err := buildMessage(draft)
	if err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(draft.AttachmentPath), filepath.Ext(draft.AttachmentPath))
	if name == "" {
		name = "report"
	}
	emlPath := filepath.Join(dir, name+".eml")
	if err := msg.WriteToFile(emlPath); err != nil {
		return "", fmt.Errorf("writing draft file: %w", err)
	}

	if err := openWithDefaultClient(emlPath); err != nil {
		return emlPath, fmt.Errorf("opening draft in mail client: %w", err)
	}
	return emlPath, nil
}

// buildMessage assembles the MIME message with the report attached.
// The X-Unsent header makes mail clients open the file as a draft.
func buildMessage(draft *Draft) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.To(draft.To...); err != nil {
		return nil, fmt.Errorf("setting TO recipients: %w", err)
	}
	if len(draft.CC) > 0 {
		if err := msg.Cc(draft.CC...); err != nil {
			return nil, fmt.Errorf("setting CC recipients: %w", err)
		}
	}
	msg.Subject(draft.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, draft.HTMLBody)
	msg.SetGenHeader("X-Unsent", "1")
	msg.AttachFile(draft.AttachmentPath)
	return msg, nil
}

// openWithDefaultClient asks the OS to open the file with its default
// handler, which for .eml is the desktop mail client.
func openWithDefaultClient(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("launching mail client: %w", err)
	}
	return nil
}
