// Package cli provides help text and usage formatting for the speedrun CLI.
package cli

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `speedrun - Resumable LLM training session orchestrator

USAGE
  speedrun [flags]

FLAGS
  Run Identity:
    --run-tag <tag>                Checkpoint directory tag (default: d<depth>)
    --run-name <name>              Experiment-tracking run name (default: run tag)
    --local-root <path>            Local state root (default: /data/nanorun)

  Remote Backup:
    --repo-id <org/name>           Hugging Face repo for checkpoint backup (empty disables sync)
    --repo-type <type>             Remote repo type: model, dataset, space (default: model)
    --private                      Create the remote repo as private (default: true)
    --sync-interval <seconds>      Seconds between background sync passes (default: 1200)
    --no-restore                   Skip restoring checkpoints from the remote repo

  Training Shape:
    --gpus <int>                   GPUs per node passed to torchrun (default: 8)
    --depth <int>                  Transformer depth of the model to train (default: 20)
    --device-batch-size <int>      Per-device micro batch size (default: 32)
    --save-every <int>             Checkpoint save interval in steps (default: 1000)

  Dataset:
    --bootstrap-shards <int>       Shards downloaded before tokenizer training (default: 8)
    --total-shards <int>           Total shards downloaded before training starts (default: 240)

  Stage Toggles:
    --no-eval                      Skip base model evaluation
    --no-sft                       Skip supervised fine-tuning
    --no-chat-eval                 Skip fine-tuned model evaluation

  Notifications:
    --notify-webhook <url>         Webhook URL for session lifecycle notifications

  Session Management:
    --status                       Show session status and exit
    --clean                        Delete state directory and start fresh

  Misc:
    --config <path>                Path to additional config file (KEY=VALUE or YAML)
    -v, --verbose                  Enable debug logging
    -h, --help                     Show this help text
    --version                      Show version, commit, build date

EXIT CODES
  0    Success              Session completed all enabled stages
  1    Error                Invalid arguments, missing tools, failed restore
  130  Interrupted          SIGINT or SIGTERM received
  N    StageFailure         A training stage exited with code N

EXAMPLES
  # Train a depth-20 model with checkpoint backup every 20 minutes
  speedrun --repo-id alice/nanorun-ckpts

  # Resume after a spot preemption (automatic when checkpoints exist)
  speedrun --repo-id alice/nanorun-ckpts

  # Small local run without backup or fine-tuning
  speedrun --depth 12 --gpus 1 --no-sft

  # Check session status
  speedrun --status

Every flag can also be set via environment variables or a config file; see
the project README for the variable names and precedence order.
`

// SetCustomHelp configures the cobra command to use our custom help template.
func SetCustomHelp(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
}
