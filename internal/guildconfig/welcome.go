package guildconfig

// WelcomeConfig configures join/leave messaging for one guild.
type WelcomeConfig struct {
	// ChannelID receives join/leave messages. Empty disables the feature.
	ChannelID string `json:"notifchannel,omitempty"`
	// JoinMessage and LeaveMessage are templates with {mention},
	// {username}, {displayname}, {guildname} and {br} placeholders.
	// An empty template suppresses that message.
	JoinMessage  string `json:"joinmsg,omitempty"`
	LeaveMessage string `json:"leavemsg,omitempty"`
}

// DefaultWelcome returns the welcome defaults: the feature is off until a
// channel is configured.
func DefaultWelcome() *WelcomeConfig {
	return &WelcomeConfig{}
}

// ModerationConfig configures moderation case logging for one guild.
type ModerationConfig struct {
	// LogChannel receives case notices. Empty means cases are recorded
	// silently.
	LogChannel string `json:"log_channel,omitempty"`
}

// DefaultModeration returns the moderation defaults.
func DefaultModeration() *ModerationConfig {
	return &ModerationConfig{}
}
