// Package metrics объявляет метрики Prometheus сервиса библиотеки.
// Метрики регистрируются в реестре по умолчанию и отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

var (
	// LoansIssued считает выданные книги.
	LoansIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_issued_total",
		Help:      "Number of books issued to readers.",
	})

	// LoansReturned считает возвращённые книги.
	LoansReturned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_returned_total",
		Help:      "Number of books returned by readers.",
	})

	// FinesCharged суммирует начисленные штрафы.
	FinesCharged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_charged_total",
		Help:      "Total amount of overdue fines charged on return.",
	})

	// LedgerConflicts считает повторы после конкурентного изменения счётчика экземпляров.
	LedgerConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_conflicts_total",
		Help:      "Availability writes rejected because the count changed concurrently.",
	}, []string{"operation"})

	// RemindersPublished считает опубликованные напоминания по типу.
	RemindersPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_published_total",
		Help:      "Loan reminders published to the broker.",
	}, []string{"kind"})

	// HTTPRequestDuration измеряет длительность HTTP-запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
