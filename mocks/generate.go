package mocks

//go:generate mockgen -destination=./mock_loader.go -package=mocks github.com/rxtech-lab/argo-screener/pkg/marketdata Loader
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/argo-screener/internal/notification Notifier
//go:generate mockgen -destination=./mock_guard.go -package=mocks github.com/rxtech-lab/argo-screener/internal/notification Guard
