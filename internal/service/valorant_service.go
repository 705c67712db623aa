package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/config"
	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository"
)

const valorantAPIBaseURL = "https://valorant-api.com/v1"

// ValorantService syncs the agent and map catalog from valorant-api.com
// into the local database, caching the referenced images as it goes.
type ValorantService struct {
	catalogRepo repository.CatalogRepository
	images      *ImageCache
	cfg         *config.Config
	baseURL     string
	httpClient  *http.Client
}

func NewValorantService(catalogRepo repository.CatalogRepository, images *ImageCache, cfg *config.Config) *ValorantService {
	return &ValorantService{
		catalogRepo: catalogRepo,
		images:      images,
		cfg:         cfg,
		baseURL:     valorantAPIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type valorantAgentsResponse struct {
	Status int `json:"status"`
	Data   []struct {
		UUID        string `json:"uuid"`
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
		DisplayIcon string `json:"displayIcon"`
		Role        *struct {
			UUID        string `json:"uuid"`
			DisplayName string `json:"displayName"`
		} `json:"role"`
	} `json:"data"`
}

type valorantMapsResponse struct {
	Status int `json:"status"`
	Data   []struct {
		UUID         string `json:"uuid"`
		DisplayName  string `json:"displayName"`
		Coordinates  string `json:"coordinates"`
		DisplayIcon  string `json:"displayIcon"`
		ListViewIcon string `json:"listViewIcon"`
		Splash       string `json:"splash"`
	} `json:"data"`
}

// GetAgents returns the cached agent catalog, syncing it first if empty.
func (s *ValorantService) GetAgents(ctx context.Context) ([]*domain.Agent, error) {
	agents, err := s.catalogRepo.GetAgents(ctx)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		if _, err := s.SyncAgents(ctx); err != nil {
			return nil, err
		}
		return s.catalogRepo.GetAgents(ctx)
	}
	return agents, nil
}

// GetMaps returns the cached map catalog, syncing it first if empty.
func (s *ValorantService) GetMaps(ctx context.Context) ([]*domain.GameMap, error) {
	maps, err := s.catalogRepo.GetMaps(ctx)
	if err != nil {
		return nil, err
	}
	if len(maps) == 0 {
		if _, err := s.SyncMaps(ctx); err != nil {
			return nil, err
		}
		return s.catalogRepo.GetMaps(ctx)
	}
	return maps, nil
}

// Sync refreshes both catalogs and returns the total number of records
// upserted.
func (s *ValorantService) Sync(ctx context.Context) (int, error) {
	agentCount, err := s.SyncAgents(ctx)
	if err != nil {
		return 0, err
	}
	mapCount, err := s.SyncMaps(ctx)
	if err != nil {
		return agentCount, err
	}
	return agentCount + mapCount, nil
}

func (s *ValorantService) SyncAgents(ctx context.Context) (int, error) {
	agentsURL := fmt.Sprintf("%s/agents?language=%s&isPlayableCharacter=true",
		s.baseURL, url.QueryEscape(s.cfg.ValorantLanguage))

	var resp valorantAgentsResponse
	if err := s.fetchJSON(ctx, agentsURL, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch agents: %w", err)
	}
	if resp.Status != http.StatusOK {
		return 0, fmt.Errorf("valorant api returned status %d for agents", resp.Status)
	}

	agents := make([]*domain.Agent, 0, len(resp.Data))
	for _, a := range resp.Data {
		roleJSON := []byte("null")
		if a.Role != nil {
			roleJSON, _ = json.Marshal(a.Role)
		}

		iconURL := s.images.Cache(ctx, a.DisplayIcon, "agents", a.UUID+".png")

		agents = append(agents, &domain.Agent{
			UUID:         a.UUID,
			Name:         a.DisplayName,
			Description:  a.Description,
			IconURL:      iconURL,
			Role:         roleJSON,
			LastSyncedAt: time.Now(),
		})
	}

	if err := s.catalogRepo.UpsertAgents(ctx, agents); err != nil {
		return 0, fmt.Errorf("failed to upsert agents: %w", err)
	}
	return len(agents), nil
}

func (s *ValorantService) SyncMaps(ctx context.Context) (int, error) {
	mapsURL := fmt.Sprintf("%s/maps?language=%s", s.baseURL, url.QueryEscape(s.cfg.ValorantLanguage))

	var resp valorantMapsResponse
	if err := s.fetchJSON(ctx, mapsURL, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch maps: %w", err)
	}
	if resp.Status != http.StatusOK {
		return 0, fmt.Errorf("valorant api returned status %d for maps", resp.Status)
	}

	maps := make([]*domain.GameMap, 0, len(resp.Data))
	for _, m := range resp.Data {
		// Listing screens and minigame modes come back without coordinates;
		// only real maps are kept.
		if m.DisplayName == "" || m.Coordinates == "" {
			continue
		}

		maps = append(maps, &domain.GameMap{
			UUID:            m.UUID,
			Name:            m.DisplayName,
			Coordinates:     m.Coordinates,
			IconURL:         s.images.Cache(ctx, m.DisplayIcon, "maps", m.UUID+"_icon.png"),
			ListViewIconURL: m.ListViewIcon,
			SplashURL:       s.images.Cache(ctx, m.Splash, "maps", m.UUID+"_splash.png"),
			LastSyncedAt:    time.Now(),
		})
	}

	if err := s.catalogRepo.UpsertMaps(ctx, maps); err != nil {
		return 0, fmt.Errorf("failed to upsert maps: %w", err)
	}
	return len(maps), nil
}

func (s *ValorantService) fetchJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "fixed-points-backend/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
