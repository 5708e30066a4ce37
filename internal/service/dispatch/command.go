package dispatch

import (
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Command 디스패치마다 실행되는 외부 소비자 프로세스입니다.
type Command interface {
	StdinPipe() (io.WriteCloser, error)
	Start() error
	Wait() error

	// Pid Start 이후의 프로세스 ID (시작 전이면 0)
	Pid() int
}

// Commander 명령줄로부터 Command를 생성합니다.
type Commander interface {
	NewCommand(commandLine string) Command
}

// ShellCommander 명령줄을 셸(/bin/sh -c, Windows는 cmd /C)을 통해 실행하는 Commander입니다.
//
// 자식 프로세스의 표준 출력과 표준 에러는 기본적으로 브리지 프로세스의 것을 그대로 상속합니다.
type ShellCommander struct {
	Stdout io.Writer
	Stderr io.Writer

	// Env 자식 프로세스 환경 변수 (nil이면 브리지 프로세스의 환경을 상속)
	Env []string
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Commander = ShellCommander{}

// NewCommand 셸을 통해 commandLine을 실행하는 Command를 생성합니다.
func (c ShellCommander) NewCommand(commandLine string) Command {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", commandLine)
	} else {
		cmd = exec.Command("/bin/sh", "-c", commandLine)
	}

	cmd.Env = c.Env
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	return &shellCmd{Cmd: cmd}
}

type shellCmd struct {
	*exec.Cmd
}

func (c *shellCmd) Pid() int {
	if c.Process == nil {
		return 0
	}
	return c.Process.Pid
}
