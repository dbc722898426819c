package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_verifications_total",
			Help: "Total number of email verification attempts.",
		},
		[]string{"service", "mechanism", "result"},
	)

	PasswordResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_password_resets_total",
			Help: "Total number of password reset flow steps.",
		},
		[]string{"service", "step", "result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of tokens issued.",
		},
		[]string{"service", "flow", "result"},
	)

	MailDispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_mail_dispatches_total",
			Help: "Total number of mail dispatch attempts.",
		},
		[]string{"service", "kind", "result"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	RegistrationsTotal = RegistrationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	LoginsTotal = LoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	VerificationsTotal = VerificationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	PasswordResetsTotal = PasswordResetsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	TokensIssuedTotal = TokensIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	MailDispatchesTotal = MailDispatchesTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		RegistrationsTotal,
		LoginsTotal,
		VerificationsTotal,
		PasswordResetsTotal,
		TokensIssuedTotal,
		MailDispatchesTotal,
	)
}
