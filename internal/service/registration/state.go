package registration

// State 등록 컨트롤러의 기동 단계입니다.
type State int

const (
	StateInit State = iota
	StateLoadIdentity
	StateLoadOrFetchConfig
	StateObtainToken
	StateConfigureSubscription

	// StateListening 기동이 끝나고 푸시 메시지를 기다리는 최종 단계
	StateListening
)

var stateNames = [...]string{
	StateInit:                  "INIT",
	StateLoadIdentity:          "LOAD_IDENTITY",
	StateLoadOrFetchConfig:     "LOAD_OR_FETCH_CONFIG",
	StateObtainToken:           "OBTAIN_TOKEN",
	StateConfigureSubscription: "CONFIGURE_SUBSCRIPTION",
	StateListening:             "LISTENING",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}
