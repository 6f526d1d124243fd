package dispatch

import (
	"fmt"
	"strings"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
)

// MeasureTools are the external wrapper binaries the rendered script invokes.
type MeasureTools struct {
	RunlimPath  string // resource-limited measurement
	TimeoutPath string // hard wall-clock cutoff for GPU jobs
	TimePath    string // timing report alongside timeout
}

// RenderScript serializes one job descriptor into the scheduler submission
// script. All script text originates here; descriptors stay pure data.
//
// Framework mode renders the same script whether or not multi-argument mode
// was requested: the framework consumes exactly a model and a property, so
// there is a single code path for both.
func RenderScript(desc *model.JobDescriptor, tools MeasureTools) string {
	var sb strings.Builder

	writeDirectives(&sb, desc)
	sb.WriteString(resolveInputFunc)
	sb.WriteByte('\n')
	writeTaskLine(&sb, desc)

	frameworkMode := desc.Command.Kind == model.CommandFramework
	if desc.MultiArg && !frameworkMode {
		sb.WriteString(multiArgFields)
	} else {
		sb.WriteString(pairFields)
	}
	sb.WriteString("mkdir -p \"$TASK_DIR\"\n\n")

	if frameworkMode {
		writeFrameworkSetup(&sb, desc.Command.Framework)
	}

	writeMeasuredCommand(&sb, desc, tools)
	return sb.String()
}

// writeDirectives emits the scheduler reservation block. The scheduler
// cutoff is set to twice the measured limit so the wrapper ends the task
// first unless it wedges.
func writeDirectives(sb *strings.Builder, desc *model.JobDescriptor) {
	res := desc.Resources
	sb.WriteString("#!/bin/bash\n")
	fmt.Fprintf(sb, "#SBATCH --partition=%s\n", res.Partition)
	if desc.Throttle > 0 {
		fmt.Fprintf(sb, "#SBATCH --array=1-%d%%%d\n", desc.ArraySize, desc.Throttle)
	} else {
		fmt.Fprintf(sb, "#SBATCH --array=1-%d\n", desc.ArraySize)
	}
	fmt.Fprintf(sb, "#SBATCH --cpus-per-task=%d\n", res.NumCPUs)
	fmt.Fprintf(sb, "#SBATCH --mem=%dM\n", res.MemoryLimitMB)
	fmt.Fprintf(sb, "#SBATCH --time=00:00:%d\n", 2*res.TimeLimitSeconds)
	if res.NumGPUs > 0 {
		fmt.Fprintf(sb, "#SBATCH --gres=gpu:%d\n", res.NumGPUs)
	}
	fmt.Fprintf(sb, "#SBATCH --output=%s\n", constants.SlurmOutputPattern)
	fmt.Fprintf(sb, "#SBATCH --chdir=%s\n", desc.WorkDir)
	sb.WriteString("\nset -u\n\n")
}

// resolveInputFunc is the shell rendering of the decompression rule in
// job.ResolveInput: prefer an existing uncompressed file, otherwise
// decompress the .gz sibling once, pass non-file tokens through.
const resolveInputFunc = `resolve_input() {
    local path="$1"
    local plain="${path%.gz}"
    if [ -e "$plain" ]; then
        printf '%s\n' "$plain"
        return 0
    fi
    if [ -e "$plain.gz" ]; then
        gunzip -kf "$plain.gz" || return 1
        printf '%s\n' "$plain"
        return 0
    fi
    printf '%s\n' "$path"
}
`

func writeTaskLine(sb *strings.Builder, desc *model.JobDescriptor) {
	fmt.Fprintf(sb, "TASK_LINE=$(sed -n \"${SLURM_ARRAY_TASK_ID}p\" %s)\n", desc.BenchFile)
	sb.WriteString(`if [ -z "$TASK_LINE" ]; then
    echo "task ${SLURM_ARRAY_TASK_ID}: no benchmark line" >&2
    exit 1
fi
read -r -a FIELDS <<< "$TASK_LINE"

`)
}

// pairFields handles the two-field form: model then property, with the task
// directory nested by their base names.
const pairFields = `if [ "${#FIELDS[@]}" -ne 2 ]; then
    echo "task ${SLURM_ARRAY_TASK_ID}: want 2 fields (model property), got ${#FIELDS[@]}" >&2
    exit 1
fi
MODEL_FILE=$(resolve_input "${FIELDS[0]}") || exit 1
PROP_FILE=$(resolve_input "${FIELDS[1]}") || exit 1
MODEL_BASE=$(basename "$MODEL_FILE")
PROP_BASE=$(basename "$PROP_FILE")
TASK_DIR="${MODEL_BASE%.*}/${PROP_BASE%.*}"
`

// multiArgFields passes every field through verbatim and names the task
// directory by array index.
const multiArgFields = `ARGS=()
for FIELD in "${FIELDS[@]}"; do
    RESOLVED=$(resolve_input "$FIELD") || exit 1
    ARGS+=("$RESOLVED")
done
TASK_DIR="slurm-${SLURM_ARRAY_TASK_ID}"
`

// writeFrameworkSetup derives the framework root and writes the per-task
// configuration document. The heredoc is unquoted so the shell variables
// inside the document expand to this task's paths.
func writeFrameworkSetup(sb *strings.Builder, fw *model.FrameworkSpec) {
	sb.WriteString("ROOT_DIR=\"$MODEL_FILE\"\n")
	fmt.Fprintf(sb, "for _ in $(seq %d); do\n    ROOT_DIR=$(dirname \"$ROOT_DIR\")\ndone\n", constants.RootPathDepth)
	fmt.Fprintf(sb, "cat > \"${TASK_DIR}/%s\" <<EOF\n", constants.FrameworkConfigName)
	sb.Write(fw.ConfigDoc)
	if n := len(fw.ConfigDoc); n == 0 || fw.ConfigDoc[n-1] != '\n' {
		sb.WriteByte('\n')
	}
	sb.WriteString("EOF\n\n")
}

// writeMeasuredCommand emits the final line: measurement wrapper, the
// command for the active variant, and output capture.
func writeMeasuredCommand(sb *strings.Builder, desc *model.JobDescriptor, tools MeasureTools) {
	var wrapper string
	if desc.Measure == model.MeasureTimeoutWrapped {
		wrapper = fmt.Sprintf("%s -v -o \"${TASK_DIR}/%s\" %s %d",
			shellQuote(tools.TimePath), constants.ReportFileName,
			shellQuote(tools.TimeoutPath), desc.Resources.TimeLimitSeconds)
	} else {
		limitFlag := "-t"
		if desc.Resources.UseWallTime {
			limitFlag = "-r"
		}
		wrapper = fmt.Sprintf("%s -o \"${TASK_DIR}/%s\" %s %d -s %d",
			shellQuote(tools.RunlimPath), constants.ReportFileName,
			limitFlag, desc.Resources.TimeLimitSeconds, desc.Resources.MemoryLimitMB)
	}

	fmt.Fprintf(sb, "%s %s > \"${TASK_DIR}/%s\" 2>&1\n",
		wrapper, strings.Join(commandWords(desc), " "), constants.RunOutFileName)
}

// commandWords assembles the solver or framework invocation with shell
// variables left for runtime expansion.
func commandWords(desc *model.JobDescriptor) []string {
	var words []string
	if desc.Command.Kind == model.CommandFramework {
		fw := desc.Command.Framework
		words = []string{
			shellQuote(fw.Runtime),
			shellQuote(fw.Entry),
			"--config", fmt.Sprintf("\"${TASK_DIR}/%s\"", constants.FrameworkConfigName),
			"--results_file", fmt.Sprintf("\"${TASK_DIR}/%s\"", constants.FrameworkResultsName),
		}
	} else {
		words = []string{shellQuote(desc.Command.SolverPath)}
		if desc.MultiArg {
			words = append(words, `"${ARGS[@]}"`)
		} else {
			words = append(words, `"$MODEL_FILE"`, `"$PROP_FILE"`)
		}
	}
	for _, arg := range desc.Command.ExtraArgs {
		words = append(words, shellQuote(arg))
	}
	return words
}

// shellQuote single-quotes s when it contains anything the shell would
// interpret; plain paths stay readable.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]#~`!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
