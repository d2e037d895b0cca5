package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/argo-quant/internal/strategy Strategy
//go:generate mockgen -destination=./mock_loader.go -package=mocks github.com/rxtech-lab/argo-quant/internal/datasource Loader
