package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"

	"github.com/shouni/story-vision-kit/pkg/app"
	"github.com/shouni/story-vision-kit/pkg/config"
	"github.com/shouni/story-vision-kit/pkg/domain"
	"github.com/shouni/story-vision-kit/pkg/generator"
	"github.com/shouni/story-vision-kit/pkg/logging"
)

const usage = `Usage: story [-config path] [-i] <context> <style> <image> [image...]

Styles: Nostalgic, Humorous, Dramatic, Poetic
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("story", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to a YAML config file")
	interactive := fs.Bool("i", false, "interactive console")
	seed := fs.Int64("seed", 0, "sampling seed (0 lets the model choose)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if !*interactive && fs.NArg() < 3 {
		fs.Usage()
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := logging.New(stderr, logging.Options{Level: cfg.LogLevel, Console: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("初期化に失敗しました")
		return 1
	}
	defer func() {
		_ = a.Close()
	}()

	var seedPtr *int64
	if *seed != 0 {
		seedPtr = seed
	}

	if *interactive {
		if err := console(ctx, a, seedPtr, stdout); err != nil {
			logger.Error().Err(err).Msg("コンソールを終了します")
			return 1
		}
		return 0
	}

	req := domain.StoryRequest{
		Context: fs.Arg(0),
		Style:   domain.Style(fs.Arg(1)),
		Images:  imageInputs(fs.Args()[2:]),
		Seed:    seedPtr,
	}
	printStory(ctx, a, req, stdout, stderr)
	return 0
}

// printStory は警告を stderr に、物語（またはエラー行）を stdout に書き出します。
// 生成に失敗しても見出しは出力し、本文の位置にエラー行を置きます。
func printStory(ctx context.Context, a *app.App, req domain.StoryRequest, stdout, stderr io.Writer) {
	text := ""
	resp, err := a.Story.Generate(ctx, req)
	if err != nil {
		text = generator.ErrorMessage(err)
	} else {
		for _, w := range resp.Warnings {
			fmt.Fprintln(stderr, w)
		}
		text = resp.Text
	}
	fmt.Fprintf(stdout, "\nGenerated Story:\n\n%s\n", text)
}

func imageInputs(paths []string) []domain.ImageInput {
	images := make([]domain.ImageInput, 0, len(paths))
	for _, p := range paths {
		images = append(images, domain.ImageInput{Source: p})
	}
	return images
}

// console はコンテキスト・スタイル・画像パスを順に尋ねて物語を生成するループです。
// Ctrl-D で終了します。
func console(ctx context.Context, a *app.App, seed *int64, stdout io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "context> ",
		Stdout: stdout,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	ask := func(prompt string) (string, bool) {
		rl.SetPrompt(prompt)
		line, err := rl.Readline()
		if err != nil { // io.EOF, readline.ErrInterrupt
			return "", false
		}
		return strings.TrimSpace(line), true
	}

	for ctx.Err() == nil {
		storyContext, ok := ask("context> ")
		if !ok {
			return nil
		}
		style, ok := ask("style (Nostalgic/Humorous/Dramatic/Poetic)> ")
		if !ok {
			return nil
		}
		paths, ok := ask("images (space separated)> ")
		if !ok {
			return nil
		}
		req := domain.StoryRequest{
			Context: storyContext,
			Style:   domain.Style(style),
			Images:  imageInputs(strings.Fields(paths)),
			Seed:    seed,
		}
		printStory(ctx, a, req, stdout, rl.Stderr())
	}
	return nil
}
