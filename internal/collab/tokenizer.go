package collab

import (
	"context"
	"strconv"
)

// TokenizerRunner implements TokenizerTrainer via the tokenizer scripts.
type TokenizerRunner struct {
	MaxChars int64
}

// BuildTrainArgs constructs arguments for tokenizer training.
func (r *TokenizerRunner) BuildTrainArgs() []string {
	args := []string{"-m", "scripts.tok_train"}
	if r.MaxChars > 0 {
		args = append(args, "--max_chars="+strconv.FormatInt(r.MaxChars, 10))
	}
	return args
}

// TrainTokenizer trains the tokenizer from the bootstrap dataset shards.
func (r *TokenizerRunner) TrainTokenizer(ctx context.Context) error {
	return runCommand(ctx, "tok_train", "python", r.BuildTrainArgs()...)
}

// EvalTokenizer reports tokenizer compression stats.
func (r *TokenizerRunner) EvalTokenizer(ctx context.Context) error {
	return runCommand(ctx, "tok_eval", "python", "-m", "scripts.tok_eval")
}
