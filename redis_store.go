package main

import (
	"encoding/json"
	"fmt"
	"log"

	redis "github.com/redis/go-redis/v9"
)

func initRedis() {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		log.Printf("Redis not available, using in-memory storage only: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis connected")
	}
}

func saveJobToRedis(job *Job) error {
	if redisClient == nil {
		return nil
	}
	jobData, err := json.Marshal(job)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("job:%s", job.ID)
	return redisClient.Set(ctx, key, jobData, cfg.jobTTL()).Err()
}

func getJobFromRedis(jobID string) (*Job, error) {
	if redisClient == nil {
		return nil, nil
	}
	key := fmt.Sprintf("job:%s", jobID)
	val, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func deleteJobFromRedis(jobID string) {
	if redisClient == nil {
		return
	}
	redisClient.Del(ctx, fmt.Sprintf("job:%s", jobID))
}

func saveMetadataToRedis(url string, meta *Metadata) error {
	if redisClient == nil {
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("meta:%s", url)
	return redisClient.Set(ctx, key, data, cfg.metadataTTL()).Err()
}

func getMetadataFromRedis(url string) (*Metadata, error) {
	if redisClient == nil {
		return nil, nil
	}
	val, err := redisClient.Get(ctx, fmt.Sprintf("meta:%s", url)).Result()
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(val), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
