package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(run).ExecuteContext(context.Background()); err != nil {
		// 로거 초기화 전에 실패할 수 있으므로 표준 에러에 출력합니다.
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}
