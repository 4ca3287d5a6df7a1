package export

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"rptcore/config"
	"rptcore/process"
	"rptcore/state"
)

const listingExt = ".txt"

// buildOutputPath returns path of the listing file for a single target. By
// default it is "<source>-<target>.txt" in dst. User-defined template may
// introduce subdirectories, every path segment is cleaned and if requested
// transliterated.
func buildOutputPath(res *process.Result, report, src, dst string, env *state.LocalEnv) string {
	defaultFile := buildDefaultFileName(src, res.Target, env)

	if env.Cfg.Layout.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expandedName := expandOutputNameTemplate(res, report, src, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(dst, defaultFile)
	}
	return assemblePathWithSubdirs(dst, expandedName, env)
}

func buildDefaultFileName(src, target string, env *state.LocalEnv) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + "-" + target
	if env.Cfg.Layout.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + listingExt
}

func expandOutputNameTemplate(res *process.Result, report, src string, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(res, report, src, config.OutputNameTemplateFieldName, env.Cfg.Layout.OutputNameTemplate)
	if err != nil {
		env.Named("export").Warn("Unable to prepare output filename", zap.String("target", res.Target), zap.Error(err))
		return ""
	}
	return filepath.FromSlash(strings.TrimSpace(expandedName))
}

func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	segments := splitPath(expandedName)
	if len(segments) == 0 {
		return outDir
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], env)+listingExt)
	return filepath.Join(parts...)
}

// splitPath returns non-empty segments of relative path, ".." segments are
// dropped so expanded name never escapes destination directory.
func splitPath(path string) []string {
	segments := make([]string, 0, 8)
	for s := range strings.SplitSeq(path, string(os.PathSeparator)) {
		if s == "" || s == "." || s == ".." {
			continue
		}
		segments = append(segments, s)
	}
	return slices.Clip(segments)
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Layout.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
