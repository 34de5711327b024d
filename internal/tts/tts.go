// Package tts turns narration text into an audio artifact on disk.
package tts

import (
	"context"
	"errors"
	"fmt"

	"autopost/poster-go/internal/config"
	"autopost/poster-go/internal/utils"
)

// Provider synthesizes narration into outputPath. A failed synthesis abandons
// the whole job upstream; nothing is marked in the queue.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text, outputPath string) error
}

// Piper drives a local piper install with an onnx voice model.
type Piper struct {
	Model      string
	ConfigFile string
	Voice      string
}

func (p Piper) Name() string { return "piper" }

func (p Piper) Synthesize(ctx context.Context, text, outputPath string) error {
	if p.Model == "" {
		return errors.New("piper model not configured")
	}
	cmd := fmt.Sprintf(
		"echo %s | piper --sentence-silence 0.7 --model %s -c %s --output_file %s",
		utils.ShellEscape(text),
		utils.ShellEscape(p.Model),
		utils.ShellEscape(p.ConfigFile),
		utils.ShellEscape(outputPath),
	)
	if _, err := utils.RunCommand(ctx, cmd); err != nil {
		return err
	}
	if !utils.FileExists(outputPath) {
		return fmt.Errorf("piper produced no file at %s", outputPath)
	}
	return nil
}

// Espeak is the low-quality fallback voice; always installable, never great.
type Espeak struct {
	Voice string
}

func (e Espeak) Name() string { return "espeak-ng" }

func (e Espeak) Synthesize(ctx context.Context, text, outputPath string) error {
	voice := e.Voice
	if voice == "" {
		voice = "id"
	}
	cmd := "espeak-ng -v " + utils.ShellJoin(voice) + " -w " + utils.ShellJoin(outputPath, text)
	if _, err := utils.RunCommand(ctx, cmd); err != nil {
		return err
	}
	if !utils.FileExists(outputPath) {
		return fmt.Errorf("espeak-ng produced no file at %s", outputPath)
	}
	return nil
}

// Chain tries each provider in order and settles on the first success.
type Chain struct {
	Providers []Provider
}

func (c Chain) Name() string { return "chain" }

func (c Chain) Synthesize(ctx context.Context, text, outputPath string) error {
	var lastErr error
	for _, provider := range c.Providers {
		if err := provider.Synthesize(ctx, text, outputPath); err != nil {
			utils.Warn("tts provider failed", "provider", provider.Name(), "err", err)
			lastErr = err
			continue
		}
		utils.Debug("tts ok", "provider", provider.Name(), "output", outputPath)
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no tts providers configured")
	}
	return fmt.Errorf("all tts providers failed: %w", lastErr)
}

// FromConfig builds the provider chain: piper when a model is configured,
// espeak-ng as the catch-all.
func FromConfig(cfg config.Config) Provider {
	var providers []Provider
	if cfg.TTSOnnxModel != "" {
		providers = append(providers, Piper{
			Model:      cfg.TTSOnnxModel,
			ConfigFile: cfg.TTSConfig,
			Voice:      cfg.TTSVoice,
		})
	}
	providers = append(providers, Espeak{Voice: cfg.EspeakVoice})
	return Chain{Providers: providers}
}
