package service

// SetProviderURLs points the Discord client at a stub provider so tests can
// drive the full login flow without reaching discord.com.
func (s *DiscordService) SetProviderURLs(tokenURL, userURL, revokeURL string) {
	if s.oauth != nil {
		s.oauth.Endpoint.AuthURL = tokenURL
		s.oauth.Endpoint.TokenURL = tokenURL
	}
	s.userURL = userURL
	s.revokeURL = revokeURL
}
