package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.fiblab.net/sim/metro/router"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// mongo下载边表的超时时间
	MONGO_TIMEOUT = 30 * time.Second
)

func readEdgesFile(file string) ([]router.TrackEdge, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return router.ReadEdges(f)
}

func writeEdgesFile(file string, edges []router.TrackEdge) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	tmp := file + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := router.WriteEdges(f, edges); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, file)
}

// 从mongo集合下载边表，文档格式与CSV列一致
func downloadEdges(ctx context.Context, mongoURI string, p *Path) ([]router.TrackEdge, error) {
	if mongoURI == "" {
		return nil, errors.New("mongo uri is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, MONGO_TIMEOUT)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(context.Background())
	coll := client.Database(p.GetDb()).Collection(p.GetColl())
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", p, err)
	}
	edges := make([]router.TrackEdge, 0)
	if err := cur.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	for i, e := range edges {
		if e.DistanceKm <= 0 {
			return nil, fmt.Errorf("%w: document %d of %s: distance must be positive, got %v",
				router.ErrMalformedRow, i, p, e.DistanceKm)
		}
	}
	return edges, nil
}

// 加载边表：文件直接读取；mongo集合优先读取cacheDir中的缓存，没有缓存时下载并写入缓存
func loadEdges(ctx context.Context, mongoURI string, p *Path, cacheDir string) ([]router.TrackEdge, error) {
	if p == nil {
		return nil, errors.New("no edge list given")
	}
	if p.IsFile() {
		log.Infof("load edges from file %s", p.File)
		return readEdgesFile(p.File)
	}
	if cacheDir != "" {
		cachePath := p.GetCachePath(cacheDir)
		if _, err := os.Stat(cachePath); err == nil {
			log.Infof("load edges from cache %s", cachePath)
			return readEdgesFile(cachePath)
		}
	}
	log.Infof("download edges from mongo %s", p)
	edges, err := downloadEdges(ctx, mongoURI, p)
	if err != nil {
		return nil, err
	}
	if cacheDir != "" {
		cachePath := p.GetCachePath(cacheDir)
		if err := writeEdgesFile(cachePath, edges); err != nil {
			log.Warnf("failed to write edge cache %s: %v", cachePath, err)
		} else {
			log.Infof("edge cache saved to %s", cachePath)
		}
	}
	return edges, nil
}
