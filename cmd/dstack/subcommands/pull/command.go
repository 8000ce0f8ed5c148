package pull

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/youta-t/flarc"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
)

type Flags struct {
	Index int `flag:"index" alias:"i" metavar:"N" help:"download only the attachment at this index. Default: all of them."`
}

const (
	ARG_STACK = "STACK"
	ARG_DEST  = "DEST"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Pull the head frame of a stack to your local filesystem.",
		Flags{
			Index: -1,
		},
		flarc.Args{
			{
				Name: ARG_STACK, Required: true,
				Help: `Stack to pull, named as STACK or USER/STACK.`,
			},
			{
				Name: ARG_DEST, Required: false,
				Help: `
directory where downloaded attachments will be located at.
If the directory does not exist, it will be created.
If you set "-", the payload is written to stdout (--index is required then).
Default: current directory ".".
`,
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Download the attachments of a stack's head frame.

The checksum of each payload is verified against the one recorded at
push time.
`),
	)
}

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		profile profiles.Profile,
		client krst.Client,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		flags := cl.Flags()

		path, err := apistacks.ParsePath(cl.Args()[ARG_STACK][0], profile.User)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		dest := "."
		if args := cl.Args()[ARG_DEST]; 0 < len(args) {
			dest = args[0]
		}
		toStdout := dest == "-"
		if toStdout && flags.Index < 0 {
			return fmt.Errorf("%w: --index is required to write to stdout", flarc.ErrUsage)
		}

		stack, err := client.GetStack(ctx, path)
		if err != nil {
			return err
		}
		if stack.Head == nil {
			return fmt.Errorf("stack %s has no frames yet", path)
		}
		head := *stack.Head

		attachments := head.Attachments
		if 0 <= flags.Index {
			if len(attachments) <= flags.Index {
				return fmt.Errorf(
					"frame %s has no attachment at index %d", head.FrameId, flags.Index,
				)
			}
			attachments = attachments[flags.Index : flags.Index+1]
		}

		if toStdout {
			a := attachments[0]
			return client.GetAttachment(
				ctx, head.FrameId, a.Index,
				func(r io.Reader) error {
					_, err := io.Copy(cl.Stdout(), r)
					return err
				},
			)
		}

		if err := os.MkdirAll(dest, os.FileMode(0755)); err != nil {
			return err
		}

		total := len(attachments)
		for n, a := range attachments {
			name := fileNameOf(path, a)
			if err := download(
				ctx, client, cl.Stderr(), head.FrameId, a, filepath.Join(dest, name),
			); err != nil {
				return err
			}
			logger.Printf("[[%d/%d]] pulled: %s", n+1, total, name)
		}
		return nil
	}
}

// fileNameOf decides the local file name of an attachment: its "name"
// param when present, "<stack>.<index>" otherwise.
func fileNameOf(path apistacks.Path, a apiframes.Attachment) string {
	for _, p := range a.Params {
		if p.Key == "name" && p.Value != "" {
			return filepath.Base(p.Value)
		}
	}
	return fmt.Sprintf("%s.%d", path.Name, a.Index)
}

func download(
	ctx context.Context,
	client krst.Client,
	progressOut io.Writer,
	frameId string,
	a apiframes.Attachment,
	dest string,
) error {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(0644))
	if err != nil {
		return err
	}
	defer f.Close()

	bar := pb.New64(a.Length)
	bar.Set(pb.Bytes, true)
	bar.SetWriter(progressOut)
	if err := bar.Err(); err != nil {
		return err
	}
	bar.Set("prefix", filepath.Base(dest)+": ")

	bar.Start()
	defer bar.Finish()

	return client.GetAttachment(
		ctx, frameId, a.Index,
		func(r io.Reader) error {
			_, err := io.Copy(f, bar.NewProxyReader(r))
			return err
		},
	)
}
