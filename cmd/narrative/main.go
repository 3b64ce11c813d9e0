// Package main は解析・改善パイプラインをファイルや標準入力に対して実行するCLI
package main

import (
	"fmt"
	"os"

	"narrative-navigator/internal/modules/shared/infrastructure/annotation"
)

func main() {
	root := newRootCmd(annotation.NewProseAnnotator(annotation.NewLoader()))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
