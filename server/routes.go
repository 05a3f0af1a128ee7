package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteFunc("GET "+RouteAuthMe, ChainMiddleware(s.CurrentUserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))

	// USERS
	s.RegisterRouteFunc("PUT "+RouteUserProfile, ChainMiddleware(s.UpdateProfileHandler(), s.APIMiddleware(s.RequireAuth())...))

	// COURSES
	s.RegisterRouteFunc("GET "+RouteCourses, ChainMiddleware(s.ListCoursesHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCoursesEnrolled, ChainMiddleware(s.EnrolledCoursesHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteCourse, ChainMiddleware(s.GetCourseHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCourseEnroll, ChainMiddleware(s.EnrollHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("PUT "+RouteCourseProgress, ChainMiddleware(s.UpdateProgressHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteUniversities, ChainMiddleware(s.ListUniversitiesHandler(), s.APIMiddleware()...))

	// NEWSLETTER
	s.RegisterRouteFunc("POST "+RouteNewsletterSubscribe, ChainMiddleware(s.SubscribeHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteNewsletterUnsubscribe, ChainMiddleware(s.UnsubscribeHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("PUT "+RouteNewsletterPreferences, ChainMiddleware(s.UpdatePreferencesHandler(), s.APIMiddleware()...))

	// Anything else under the prefix gets an enveloped 404 rather than the mux's plain text one
	s.RegisterRouteFunc("/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}
