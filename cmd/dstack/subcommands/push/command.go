package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/youta-t/flarc"

	apiparams "github.com/dstackai/dstack/api/types/params"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
	kargs "github.com/dstackai/dstack/pkg/utils/args"
)

type Flags struct {
	Message     string        `flag:"message" alias:"m" metavar:"TEXT" help:"message recorded on the pushed frame"`
	Param       *kargs.Params `flag:"param" alias:"p" metavar:"KEY:VALUE..." help:"parameters put on every attachment. Repeatable."`
	Description string        `flag:"description" alias:"d" metavar:"TEXT" help:"description put on every attachment"`
	ContentType string        `flag:"content-type" metavar:"TYPE" help:"media type of the payloads. Default: guessed from the file extension."`
	Name        bool          `flag:"name" alias:"n" help:"add param name:<file name> to each attachment"`
}

const (
	ARG_STACK  = "STACK"
	ARG_SOURCE = "FILE"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Push files to a stack as a new frame.",
		Flags{
			Param: &kargs.Params{},
		},
		flarc.Args{
			{
				Name: ARG_STACK, Required: true,
				Help: `Stack to push to, named as STACK or USER/STACK. The stack is created when it does not exist yet.`,
			},
			{
				Name: ARG_SOURCE, Required: true, Repeatable: true,
				Help: `Files to be pushed. Each one becomes an attachment of the new frame.`,
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Push local files to a stack.

A frame is opened on the stack, each FILE is uploaded as an attachment
of it, and the frame is closed. Once the frame is closed it becomes the
head of the stack, and everyone allowed to see the stack pulls this
revision.

To distinguish attachments pushed together, put parameters on them:

	{{ .Command }} my-plot --param country:DE chart_de.svg
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

		sources := cl.Args()[ARG_SOURCE]
		for _, s := range sources {
			if _, err := os.Stat(s); err != nil {
				return fmt.Errorf("%w: %s", err, s)
			}
		}

		frame, err := krst.CreateFrame(ctx, client, path, flags.Message)
		if err != nil {
			return err
		}
		logger.Printf("frame %s is opened on %s", frame.Id(), path)

		total := len(sources)
		for n, s := range sources {
			if err := upload(ctx, frame, cl.Stderr(), s, flags); err != nil {
				return fmt.Errorf("%w: failed to push %s", err, s)
			}
			logger.Printf("[[%d/%d]] sent: %s", n+1, total, s)
		}

		closed, err := frame.Push(ctx)
		if err != nil {
			return err
		}
		logger.Printf("pushed: %s (frame %s)", path, closed.FrameId)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(closed)
	}
}

func upload(
	ctx context.Context,
	frame *krst.Frame,
	progressOut io.Writer,
	source string,
	flags Flags,
) error {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}

	contentType := flags.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(source))
	}

	ps := []apiparams.Param{}
	if flags.Param != nil {
		ps = append(ps, *flags.Param...)
	}
	if flags.Name {
		ps = append(ps, apiparams.Param{Key: "name", Value: filepath.Base(source)})
	}

	prog := frame.Commit(ctx, f, stat.Size(), krst.AttachmentSource{
		Description: flags.Description,
		ContentType: contentType,
		Params:      ps,
	})

	bar := pb.New64(prog.EstimatedTotalSize())
	bar.Set(pb.Bytes, true)
	bar.SetWriter(progressOut)
	if err := bar.Err(); err != nil {
		return err
	}

	bar.Start()
	bar.Set("prefix", filepath.Base(source)+": ")
	for {
		select {
		case <-time.NewTimer(1 * time.Second).C:
			bar.SetCurrent(prog.ProgressedSize())
			continue
		case <-prog.Sent():
			bar.SetCurrent(prog.ProgressedSize())
		}
		break
	}
	bar.Finish()

	<-prog.Done()
	if err := prog.Error(); err != nil {
		return err
	}

	if _, ok := prog.Result(); !ok {
		return fmt.Errorf("failed to push %s", source)
	}
	return nil
}
