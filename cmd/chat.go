// File: cmd/chat.go
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/guardian/api/schemas"
)

const chatPrompt = "you> "

func newChatCmd(provider oracleProvider) *cobra.Command {
	var (
		lang string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the Digital Guardian assistant",
		Long: `Starts an interactive conversation with web search enabled.
Type /attach <file> [mime] to queue a file for the next message, /exit to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			if lang == "" {
				lang = cfg.Analysis().DefaultLanguage
			}
			if mode == "" {
				mode = cfg.Analysis().DefaultChatMode
			}
			chatMode, err := schemas.ParseChatMode(mode)
			if err != nil {
				return err
			}

			gw, cleanup, err := newGateway(ctx, cfg, provider)
			if err != nil {
				return fmt.Errorf("failed to initialize LLM client: %w", err)
			}
			defer cleanup()

			session, err := gw.StartChat(ctx, lang, chatMode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Digital Guardian (%s, %s). Type /exit to quit.\n", session.Language, session.Mode)

			var pending []schemas.Attachment
			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			for {
				fmt.Fprint(out, chatPrompt)
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "/exit" || line == "/quit":
					return nil
				case strings.HasPrefix(line, "/attach"):
					att, err := parseAttach(strings.TrimSpace(strings.TrimPrefix(line, "/attach")))
					if err != nil {
						fmt.Fprintf(out, "error: %v\n", err)
						continue
					}
					pending = append(pending, att)
					fmt.Fprintf(out, "attached %s (%d bytes)\n", att.MIMEType, len(att.Data))
					continue
				}

				reply, err := session.Send(ctx, schemas.ChatMessage{Text: line, Attachments: pending})
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				pending = nil
				printReply(out, reply)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language of the assistant's answers (default from config)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "answer style: Detailed or Concise (default from config)")
	return cmd
}

// parseAttach reads "<file> [mime]" and loads the file.
func parseAttach(arg string) (schemas.Attachment, error) {
	fields := strings.Fields(arg)
	if len(fields) == 0 || len(fields) > 2 {
		return schemas.Attachment{}, fmt.Errorf("usage: /attach <file> [mime]")
	}
	data, err := readFile(fields[0])
	if err != nil {
		return schemas.Attachment{}, err
	}
	if len(fields) == 2 {
		return schemas.Attachment{Data: data, MIMEType: fields[1]}, nil
	}
	mimeType, err := detectAttachmentType(fields[0], data)
	if err != nil {
		return schemas.Attachment{}, err
	}
	return schemas.Attachment{Data: data, MIMEType: mimeType}, nil
}

func detectAttachmentType(path string, data []byte) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return schemas.PDFMIMEType, nil
	}
	return detectImageType(path, data)
}

func printReply(w io.Writer, reply *schemas.ChatReply) {
	fmt.Fprintf(w, "guardian> %s\n", reply.Text)
	if len(reply.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "Sources:")
	for i, src := range reply.Sources {
		fmt.Fprintf(w, "  [%d] %s - %s\n", i+1, src.Title, src.URI)
	}
}
