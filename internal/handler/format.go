package handler

import "strings"

// escapeMarkdown keeps underscored names from italicising the message.
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "_", "\\_")
}

// MemberVars carries the values substituted into welcome/leave templates.
type MemberVars struct {
	Mention     string
	Username    string
	DisplayName string
	GuildName   string
}

// FormatMemberMessage expands a welcome/leave template. Supported
// placeholders: {mention}, {username}, {displayname}, {guildname}, {br}.
func FormatMemberMessage(template string, vars MemberVars) string {
	r := strings.NewReplacer(
		"{mention}", vars.Mention,
		"{username}", escapeMarkdown(vars.Username),
		"{displayname}", escapeMarkdown(vars.DisplayName),
		"{guildname}", escapeMarkdown(vars.GuildName),
		"{br}", "\n",
	)
	return r.Replace(template)
}

// AlertVars carries the values substituted into level-up templates.
type AlertVars struct {
	UserMention string
	Level       string
	GuildName   string
	RoleName    string
}

// FormatAlertMessage expands a level-up/role-up template. Supported
// placeholders: {user}, {level}, {guild}, {role}.
func FormatAlertMessage(template string, vars AlertVars) string {
	r := strings.NewReplacer(
		"{user}", vars.UserMention,
		"{level}", vars.Level,
		"{guild}", vars.GuildName,
		"{role}", vars.RoleName,
	)
	return r.Replace(template)
}
